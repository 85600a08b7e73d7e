package classroom

import "context"

// Store is the durable interface behind every component. Each method is one
// self-contained transaction (or single statement); there are no partial
// writes to roll back.
type Store interface {
	// Question sets.
	SaveQuestionSet(ctx context.Context, dateLabel string, questions []string) error
	ResolveQuestions(ctx context.Context, dateLabel string) ([]string, error)
	ListQuestionDates(ctx context.Context) ([]string, error)

	// Answers.
	ReplaceAnswers(ctx context.Context, studentID, dateLabel string, rows []AnswerRow) error
	ListAnswers(ctx context.Context, f AnswerFilter) ([]AnswerRow, error)
	ListAnswerDates(ctx context.Context) ([]string, error)
	SetChecked(ctx context.Context, ids []int64, checked bool) error

	// Logins.
	RecordLogin(ctx context.Context, studentID, dateLabel string) error
	ListLogins(ctx context.Context, dateLabel string) ([]LoginEvent, error)

	// Participation.
	SaveParticipation(ctx context.Context, dateLabel string, rows []ParticipationRow) error
	ParticipationCounts(ctx context.Context, dateLabel string) (map[string]int, error)

	// Activity scores.
	SaveActivityScores(ctx context.Context, dateLabel string, rows []ActivityScoreRow) error
	ListActivityScores(ctx context.Context, dateLabel string) ([]ActivityScoreRow, error)

	// Aggregation inputs. An empty dateLabel means "across all dates".
	AnswerCounts(ctx context.Context, dateLabel string) (map[string]int, error)
	ActivityTotals(ctx context.Context, dateLabel string) (map[string]float64, error)
	ParticipationTotals(ctx context.Context, dateLabel string) (map[string]int, error)
	StudentGroups(ctx context.Context, dateLabel string) (map[string]string, error)

	// Weights singleton.
	LoadWeights(ctx context.Context) (Weights, error)
	SaveWeights(ctx context.Context, w Weights) error
}
