// Package draft holds the per-session, in-progress answer set a student
// navigates before committing it to the store. A draft is private to one
// session and never visible elsewhere until submitted.
package draft

import (
	"context"
	"errors"
	"strings"

	"github.com/classtally/classtally/internal/classroom"
)

var (
	ErrBlankStudentID = errors.New("student id required")
	ErrNotStarted     = errors.New("draft not started")
	ErrAtFirstSlot    = errors.New("already at first question")
	ErrAtLastSlot     = errors.New("already at last question")
	ErrAnswerRequired = errors.New("answer required before advancing")
	ErrAnswersMissing = errors.New("every answer must be filled in")
)

// Draft is the submission state machine. Questions and answers are parallel
// slices kept length-synchronized on every access; question text is editable
// per slot without touching the instructor's stored set.
type Draft struct {
	studentID string
	dateLabel string

	questions []string
	answers   []string
	cursor    int
	groupName string
	preview   bool
	started   bool
}

// View is the read-model handed to the rendering layer after every transition.
type View struct {
	Started    bool     `json:"started"`
	StudentID  string   `json:"student_id"`
	DateLabel  string   `json:"date_label"`
	Questions  []string `json:"questions"`
	Answers    []string `json:"answers"`
	Cursor     int      `json:"cursor"`
	GroupName  string   `json:"group_name"`
	Preview    bool     `json:"preview"`
	Progress   float64  `json:"progress"`
	CanGoBack  bool     `json:"can_go_back"`
	CanGoNext  bool     `json:"can_go_next"`
	CanPreview bool     `json:"can_preview"`
	CanSubmit  bool     `json:"can_submit"`
}

// PreviewRow is one line of the read-only preview table.
type PreviewRow struct {
	Ordinal  int    `json:"ordinal"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Group    string `json:"group"`
}

// Start begins a draft for the student using the already-resolved question
// set. An empty resolution is clamped to a single blank slot.
func Start(studentID, dateLabel string, questions []string) (*Draft, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, ErrBlankStudentID
	}
	qs := append([]string(nil), questions...)
	if len(qs) == 0 {
		qs = []string{""}
	}
	d := &Draft{
		studentID: strings.TrimSpace(studentID),
		dateLabel: strings.TrimSpace(dateLabel),
		questions: qs,
		answers:   make([]string, len(qs)),
		started:   true,
	}
	return d, nil
}

// syncLen restores the slot invariants: answers matches questions in length,
// zero slots becomes one blank slot, cursor stays inside [0, len-1].
func (d *Draft) syncLen() {
	if len(d.questions) == 0 {
		d.questions = []string{""}
	}
	for len(d.answers) < len(d.questions) {
		d.answers = append(d.answers, "")
	}
	d.answers = d.answers[:len(d.questions)]
	if d.cursor < 0 {
		d.cursor = 0
	}
	if d.cursor > len(d.questions)-1 {
		d.cursor = len(d.questions) - 1
	}
}

func (d *Draft) EditQuestion(text string) {
	d.syncLen()
	d.questions[d.cursor] = text
}

func (d *Draft) EditAnswer(text string) {
	d.syncLen()
	d.answers[d.cursor] = text
}

func (d *Draft) SetGroup(name string) {
	d.groupName = strings.TrimSpace(name)
}

func (d *Draft) Back() error {
	d.syncLen()
	if d.cursor == 0 {
		return ErrAtFirstSlot
	}
	d.cursor--
	d.preview = false
	return nil
}

// Next requires a non-blank answer at the cursor; the question text is
// deliberately not checked. Advancing never appends a slot.
func (d *Draft) Next() error {
	d.syncLen()
	if d.cursor >= len(d.questions)-1 {
		return ErrAtLastSlot
	}
	if strings.TrimSpace(d.answers[d.cursor]) == "" {
		return ErrAnswerRequired
	}
	d.cursor++
	d.preview = false
	return nil
}

// Append adds one blank slot at the end and jumps the cursor to it. Allowed
// from any position, including mid-sequence.
func (d *Draft) Append() {
	d.syncLen()
	d.questions = append(d.questions, "")
	d.answers = append(d.answers, "")
	d.cursor = len(d.questions) - 1
	d.preview = false
}

func (d *Draft) allAnswered() bool {
	d.syncLen()
	for _, a := range d.answers {
		if strings.TrimSpace(a) == "" {
			return false
		}
	}
	return true
}

// EnterPreview gates on every answer being non-blank after trimming.
func (d *Draft) EnterPreview() ([]PreviewRow, error) {
	if !d.allAnswered() {
		return nil, ErrAnswersMissing
	}
	d.preview = true
	rows := make([]PreviewRow, len(d.questions))
	for i := range d.questions {
		rows[i] = PreviewRow{
			Ordinal:  i + 1,
			Question: d.questions[i],
			Answer:   d.answers[i],
			Group:    d.groupName,
		}
	}
	return rows, nil
}

// Submit re-checks the all-answered gate (preview state is not trusted),
// replaces the student's stored rows for this date label atomically, then
// folds the draft back to its not-started defaults.
func (d *Draft) Submit(ctx context.Context, store classroom.Store) error {
	if !d.started {
		return ErrNotStarted
	}
	if !d.allAnswered() {
		return ErrAnswersMissing
	}
	rows := make([]classroom.AnswerRow, len(d.questions))
	for i := range d.questions {
		rows[i] = classroom.AnswerRow{
			StudentID:  d.studentID,
			DateLabel:  d.dateLabel,
			QuestionNo: i + 1,
			Question:   strings.TrimSpace(d.questions[i]),
			Answer:     strings.TrimSpace(d.answers[i]),
			GroupName:  d.groupName,
		}
	}
	if err := store.ReplaceAnswers(ctx, d.studentID, d.dateLabel, rows); err != nil {
		return err
	}
	d.reset()
	return nil
}

func (d *Draft) reset() {
	d.started = false
	d.cursor = 0
	d.questions = append([]string(nil), classroom.DefaultQuestions...)
	d.answers = make([]string, len(classroom.DefaultQuestions))
	d.groupName = ""
	d.preview = false
}

// Progress is (cursor+1)/len clamped into [0,1] for display.
func (d *Draft) Progress() float64 {
	d.syncLen()
	p := float64(d.cursor+1) / float64(len(d.questions))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

func (d *Draft) View() View {
	d.syncLen()
	last := len(d.questions) - 1
	answered := d.allAnswered()
	return View{
		Started:    d.started,
		StudentID:  d.studentID,
		DateLabel:  d.dateLabel,
		Questions:  append([]string(nil), d.questions...),
		Answers:    append([]string(nil), d.answers...),
		Cursor:     d.cursor,
		GroupName:  d.groupName,
		Preview:    d.preview,
		Progress:   d.Progress(),
		CanGoBack:  d.cursor > 0,
		CanGoNext:  d.cursor < last && strings.TrimSpace(d.answers[d.cursor]) != "",
		CanPreview: answered,
		CanSubmit:  answered,
	}
}
