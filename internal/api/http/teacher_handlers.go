package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classtally/classtally/internal/auth"
	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/ledger"
	"github.com/classtally/classtally/internal/scoring"
)

func InstructorLoginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		tok, err := svc.Exchange(req.Code)
		if err != nil {
			http.Error(w, "invalid access code", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"access_token": tok})
	}
}

func SaveQuestionSetHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(chi.URLParam(r, "date"))
		if dateLabel == "" {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}
		var req struct {
			Questions []string `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.SaveQuestionSet(r.Context(), dateLabel, req.Questions); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "ok", "date_label": dateLabel})
	}
}

func GetQuestionSetHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := store.ResolveQuestions(r.Context(), chi.URLParam(r, "date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"questions": questions})
	}
}

func ListQuestionDatesHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates, err := store.ListQuestionDates(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"dates": dates})
	}
}

// ListAnswersHandler reviews submissions. date and student filters are
// conjunctive; all=1 ignores the date filter but keeps the student filter.
func ListAnswersHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := classroom.AnswerFilter{
			DateLabel:       strings.TrimSpace(q.Get("date")),
			StudentContains: q.Get("student"),
			AllDates:        q.Get("all") == "1",
		}
		rows, err := store.ListAnswers(r.Context(), f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dates, err := store.ListAnswerDates(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"rows": rows, "dates": dates})
	}
}

func SetCheckedHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs     []int64 `json:"ids"`
			Checked bool    `json:"checked"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.SetChecked(r.Context(), req.IDs, req.Checked); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListLoginsHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := l.ListLogins(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"logins": events})
	}
}

func GetParticipationHandler(l *ledger.Ledger, sheets *ledger.Sheets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(chi.URLParam(r, "date"))
		if dateLabel == "" {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}
		sheet, err := sheets.GetOrLoad(r.Context(), l, dateLabel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"date_label": dateLabel, "rows": sheet.Rows()})
	}
}

func AdjustParticipationHandler(l *ledger.Ledger, sheets *ledger.Sheets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(chi.URLParam(r, "date"))
		var req struct {
			StudentID string `json:"student_id"`
			Delta     int    `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.StudentID) == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		sheet, err := sheets.GetOrLoad(r.Context(), l, dateLabel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		count := sheet.Adjust(req.StudentID, req.Delta)
		writeJSON(w, map[string]any{"student_id": req.StudentID, "count": count})
	}
}

func SaveParticipationHandler(l *ledger.Ledger, sheets *ledger.Sheets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(chi.URLParam(r, "date"))
		sheet, err := sheets.GetOrLoad(r.Context(), l, dateLabel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := l.SaveSheet(r.Context(), sheet); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sheets.Drop(dateLabel)
		writeJSON(w, map[string]string{"status": "saved", "date_label": dateLabel})
	}
}

func SaveActivityScoresHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(chi.URLParam(r, "date"))
		if dateLabel == "" {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}
		var req struct {
			Rows []classroom.ActivityScoreRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.SaveActivityScores(r.Context(), dateLabel, req.Rows); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "saved", "date_label": dateLabel})
	}
}

func ListActivityScoresHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.ListActivityScores(r.Context(), strings.TrimSpace(r.URL.Query().Get("date")))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"rows": rows})
	}
}

func GetWeightsHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weights, err := store.LoadWeights(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, weights)
	}
}

func PutWeightsHandler(store classroom.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var weights classroom.Weights
		if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.SaveWeights(r.Context(), weights); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, weights)
	}
}

func DateOverviewHandler(agg *scoring.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateLabel := strings.TrimSpace(r.URL.Query().Get("date"))
		if dateLabel == "" {
			http.Error(w, "date required", http.StatusBadRequest)
			return
		}
		rows, err := agg.DateView(r.Context(), dateLabel)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"date_label": dateLabel, "rows": rows})
	}
}

func TotalOverviewHandler(agg *scoring.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		students, err := agg.TotalView(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		groups := scoring.RollUp(students)
		writeJSON(w, map[string]any{"students": students, "groups": groups})
	}
}
