package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/classtally/classtally/internal/auth"
	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/draft"
	"github.com/classtally/classtally/internal/ledger"
	"github.com/classtally/classtally/internal/scoring"
)

// Mount wires the student surface (open) and the instructor surface (behind
// the passcode-issued bearer token) onto r.
func Mount(r chi.Router, store classroom.Store, authSvc *auth.Service) {
	reg := draft.NewRegistry()
	led := ledger.New(store)
	sheets := ledger.NewSheets()
	agg := scoring.New(store)

	r.Route("/api", func(r chi.Router) {
		// Student surface.
		r.Get("/questions", GetQuestionsHandler(store))
		r.Post("/logins", RecordLoginHandler(led))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", StartSessionHandler(store, reg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", GetSessionHandler(reg))
				r.Put("/slot", EditSlotHandler(reg))
				r.Put("/group", SetGroupHandler(reg))
				r.Post("/back", BackHandler(reg))
				r.Post("/next", NextHandler(reg))
				r.Post("/append", AppendHandler(reg))
				r.Post("/preview", PreviewHandler(reg))
				r.Post("/submit", SubmitHandler(store, reg))
			})
		})

		r.Post("/auth/instructor", InstructorLoginHandler(authSvc))

		// Instructor surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireInstructor(authSvc))

			r.Get("/question-sets", ListQuestionDatesHandler(store))
			r.Put("/question-sets/{date}", SaveQuestionSetHandler(store))
			r.Get("/question-sets/{date}", GetQuestionSetHandler(store))

			r.Get("/answers", ListAnswersHandler(store))
			r.Post("/answers/checked", SetCheckedHandler(store))

			r.Get("/logins", ListLoginsHandler(led))

			r.Route("/participation/{date}", func(r chi.Router) {
				r.Get("/", GetParticipationHandler(led, sheets))
				r.Post("/adjust", AdjustParticipationHandler(led, sheets))
				r.Post("/save", SaveParticipationHandler(led, sheets))
			})

			r.Put("/activity-scores/{date}", SaveActivityScoresHandler(store))
			r.Get("/activity-scores", ListActivityScoresHandler(store))

			r.Get("/weights", GetWeightsHandler(store))
			r.Put("/weights", PutWeightsHandler(store))

			r.Get("/overview/date", DateOverviewHandler(agg))
			r.Get("/overview/total", TotalOverviewHandler(agg))
			r.Get("/export/overview.csv", ExportOverviewCSVHandler(agg))
		})
	})
}
