package classroom

// AnswerRow is one submitted answer. Question text is a per-submission copy:
// students may rephrase a question while answering, and a later edit of the
// instructor's question set must not rewrite history.
type AnswerRow struct {
	ID         int64  `json:"id"`
	StudentID  string `json:"student_id"`
	DateLabel  string `json:"date_label"`
	QuestionNo int    `json:"question_no"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	GroupName  string `json:"group_name"`
	Checked    bool   `json:"checked"`
}

// QuestionEntry is one row of an instructor-saved question set.
type QuestionEntry struct {
	DateLabel  string `json:"date_label"`
	QuestionNo int    `json:"question_no"`
	Question   string `json:"question"`
}

// LoginEvent records that a student pressed LOGIN for a date label.
type LoginEvent struct {
	StudentID string `json:"student_id"`
	DateLabel string `json:"date_label"`
	LoggedAt  int64  `json:"logged_at"` // unix seconds
}

// ParticipationRow is a manually tallied per-student counter for one date.
type ParticipationRow struct {
	StudentID string `json:"student_id"`
	Count     int    `json:"count"`
}

// ActivityScoreRow is an instructor-entered grade for one (student, date).
type ActivityScoreRow struct {
	StudentID string  `json:"student_id"`
	DateLabel string  `json:"date_label"`
	Score     float64 `json:"score"`
	Note      string  `json:"note"`
}

// Weights is the singleton linear weighting applied by the all-time view.
type Weights struct {
	Answers float64 `json:"w_answers"`
	Class   float64 `json:"w_class"`
	Part    float64 `json:"w_part"`
}

// DefaultWeights is used whenever no weights row has been saved.
var DefaultWeights = Weights{Answers: 1.0, Class: 1.0, Part: 1.0}

// DefaultQuestions is served whenever a date label has no stored set.
var DefaultQuestions = []string{
	"Explain one key concept you learned today.",
	"Give an example related to the concept.",
	"What is one question you still have?",
}

// AnswerFilter narrows ListAnswers. Filters are conjunctive; zero values mean
// no filtering. AllDates ignores DateLabel while keeping StudentContains.
type AnswerFilter struct {
	DateLabel       string
	StudentContains string // case-sensitive containment on student_id
	AllDates        bool
}
