package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/draft"
)

// Draft transitions map onto one endpoint per button press. Gate violations
// (Next without an answer, Submit with blanks, Back at the first slot) come
// back as 409 so the client can surface them as non-fatal warnings.

func StartSessionHandler(store classroom.Store, reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			DateLabel string `json:"date_label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		questions, err := store.ResolveQuestions(r.Context(), req.DateLabel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d, err := draft.Start(req.StudentID, req.DateLabel, questions)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		token := reg.Put(d)
		writeJSON(w, map[string]any{"session_id": token, "view": d.View()})
	}
}

func GetSessionHandler(reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, d.View())
	}
}

// EditSlotHandler overwrites the question and/or answer text at the cursor.
// Absent fields are left untouched.
func EditSlotHandler(reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		var req struct {
			Question *string `json:"question"`
			Answer   *string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Question != nil {
			d.EditQuestion(*req.Question)
		}
		if req.Answer != nil {
			d.EditAnswer(*req.Answer)
		}
		writeJSON(w, d.View())
	}
}

func SetGroupHandler(reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		var req struct {
			GroupName string `json:"group_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		d.SetGroup(req.GroupName)
		writeJSON(w, d.View())
	}
}

func BackHandler(reg *draft.Registry) http.HandlerFunc {
	return transitionHandler(reg, func(d *draft.Draft) error { return d.Back() })
}

func NextHandler(reg *draft.Registry) http.HandlerFunc {
	return transitionHandler(reg, func(d *draft.Draft) error { return d.Next() })
}

func AppendHandler(reg *draft.Registry) http.HandlerFunc {
	return transitionHandler(reg, func(d *draft.Draft) error { d.Append(); return nil })
}

func transitionHandler(reg *draft.Registry, fn func(*draft.Draft) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err := fn(d); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, d.View())
	}
}

func PreviewHandler(reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		rows, err := d.EnterPreview()
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, map[string]any{"rows": rows, "view": d.View()})
	}
}

func SubmitHandler(store classroom.Store, reg *draft.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := reg.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err := d.Submit(r.Context(), store); err != nil {
			if errors.Is(err, draft.ErrAnswersMissing) || errors.Is(err, draft.ErrNotStarted) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"status": "submitted", "view": d.View()})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
