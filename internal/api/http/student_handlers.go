package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/ledger"
)

func GetQuestionsHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := store.ResolveQuestions(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"questions": questions})
	}
}

// RecordLoginHandler sends the attendance signal. Repeat presses for the same
// (student, date) pair are absorbed by the store.
func RecordLoginHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			DateLabel string `json:"date_label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.StudentID) == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		if err := l.RecordLogin(r.Context(), req.StudentID, req.DateLabel); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
