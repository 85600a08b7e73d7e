package draft_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/db"
	"github.com/classtally/classtally/internal/draft"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *classroom.SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatal(err)
	}
	return classroom.NewSQLStore(dbh, "sqlite")
}

func TestStartRequiresStudentID(t *testing.T) {
	if _, err := draft.Start("   ", "2024-09-01", []string{"Q"}); !errors.Is(err, draft.ErrBlankStudentID) {
		t.Fatalf("expected ErrBlankStudentID, got %v", err)
	}
}

func TestStartClampsEmptyQuestionSet(t *testing.T) {
	d, err := draft.Start("S001", "2024-09-01", nil)
	if err != nil {
		t.Fatal(err)
	}
	v := d.View()
	if len(v.Questions) != 1 || len(v.Answers) != 1 || v.Cursor != 0 {
		t.Fatalf("empty resolution must clamp to one blank slot: %+v", v)
	}
}

func TestAdvanceGate(t *testing.T) {
	d, err := draft.Start("S001", "2024-09-01", []string{"Q1", "Q2"})
	if err != nil {
		t.Fatal(err)
	}

	// Back is unavailable only at cursor 0.
	if err := d.Back(); !errors.Is(err, draft.ErrAtFirstSlot) {
		t.Fatalf("expected ErrAtFirstSlot, got %v", err)
	}

	// A blank (or whitespace) answer blocks Next regardless of question text.
	d.EditQuestion("")
	d.EditAnswer("   ")
	if err := d.Next(); !errors.Is(err, draft.ErrAnswerRequired) {
		t.Fatalf("expected ErrAnswerRequired, got %v", err)
	}

	d.EditAnswer("an answer")
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}
	if v := d.View(); v.Cursor != 1 || !v.CanGoBack {
		t.Fatalf("cursor should be 1 with back available: %+v", v)
	}

	// Next is unavailable at the last slot even with an answer.
	d.EditAnswer("last")
	if err := d.Next(); !errors.Is(err, draft.ErrAtLastSlot) {
		t.Fatalf("expected ErrAtLastSlot, got %v", err)
	}
}

func TestAppendMovesCursorAndClearsPreview(t *testing.T) {
	d, err := draft.Start("S001", "2024-09-01", []string{"Q1"})
	if err != nil {
		t.Fatal(err)
	}
	d.EditAnswer("A1")
	if _, err := d.EnterPreview(); err != nil {
		t.Fatal(err)
	}
	if !d.View().Preview {
		t.Fatal("preview flag should be set")
	}

	d.Append()
	v := d.View()
	if v.Preview {
		t.Fatal("append must clear preview")
	}
	if v.Cursor != 1 || len(v.Questions) != 2 || len(v.Answers) != 2 {
		t.Fatalf("append must add one slot and jump to it: %+v", v)
	}

	// Append is allowed mid-sequence too.
	if err := d.Back(); err != nil {
		t.Fatal(err)
	}
	d.Append()
	if v := d.View(); v.Cursor != 2 || len(v.Questions) != 3 {
		t.Fatalf("mid-sequence append broken: %+v", v)
	}
}

func TestPreviewGateIgnoresQuestionText(t *testing.T) {
	d, err := draft.Start("S001", "2024-09-01", []string{"Q1", "Q2"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.EnterPreview(); !errors.Is(err, draft.ErrAnswersMissing) {
		t.Fatalf("expected ErrAnswersMissing, got %v", err)
	}

	// Blank question texts do not block preview; blank answers do.
	d.EditQuestion("")
	d.EditAnswer("A1")
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}
	d.EditQuestion("")
	d.EditAnswer("A2")
	rows, err := d.EnterPreview()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Ordinal != 1 || rows[1].Ordinal != 2 {
		t.Fatalf("preview rows wrong: %v", rows)
	}
}

func TestSubmitOrdinalContiguityAndReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d, err := draft.Start("S001", "2024-09-01", []string{"Q1", "Q2"})
	if err != nil {
		t.Fatal(err)
	}
	d.SetGroup("  Group A  ")
	d.EditAnswer(" A1 ")
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}
	d.EditAnswer("A2")
	d.Append()
	d.EditQuestion("my own question")
	d.EditAnswer("A3")
	if err := d.Back(); err != nil {
		t.Fatal(err)
	}
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}

	if err := d.Submit(ctx, store); err != nil {
		t.Fatal(err)
	}

	rows, err := store.ListAnswers(ctx, classroom.AnswerFilter{DateLabel: "2024-09-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.QuestionNo != i+1 {
			t.Fatalf("ordinals must be 1..N with no gaps, got %d at index %d", r.QuestionNo, i)
		}
		if r.GroupName != "Group A" {
			t.Fatalf("group must be trimmed and copied onto every row, got %q", r.GroupName)
		}
	}
	if rows[0].Answer != "A1" {
		t.Fatalf("answers must be trimmed, got %q", rows[0].Answer)
	}
	if rows[2].Question != "my own question" {
		t.Fatalf("edited question text must be stored, got %q", rows[2].Question)
	}

	// The draft folds back to its not-started defaults.
	v := d.View()
	if v.Started || v.Cursor != 0 || v.GroupName != "" || v.Preview {
		t.Fatalf("draft must reset after submit: %+v", v)
	}
	if len(v.Answers) != len(classroom.DefaultQuestions) {
		t.Fatalf("reset answers must match the default set length: %d", len(v.Answers))
	}
}

func TestSubmitRechecksGate(t *testing.T) {
	store := newTestStore(t)
	d, err := draft.Start("S001", "2024-09-01", []string{"Q1"})
	if err != nil {
		t.Fatal(err)
	}
	d.EditAnswer("A1")
	if _, err := d.EnterPreview(); err != nil {
		t.Fatal(err)
	}
	// Blanking an answer after preview must fail submit.
	d.EditAnswer("   ")
	if err := d.Submit(context.Background(), store); !errors.Is(err, draft.ErrAnswersMissing) {
		t.Fatalf("submit must re-check the gate, got %v", err)
	}
}

func TestResubmitReplacesRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := draft.Start("S001", "2024-09-01", []string{"Q1", "Q2", "Q3"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		first.EditAnswer(fmt.Sprintf("A%d", i+1))
		if i < 2 {
			if err := first.Next(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := first.Submit(ctx, store); err != nil {
		t.Fatal(err)
	}

	second, err := draft.Start("S001", "2024-09-01", []string{"Q1"})
	if err != nil {
		t.Fatal(err)
	}
	second.EditAnswer("only one")
	if err := second.Submit(ctx, store); err != nil {
		t.Fatal(err)
	}

	rows, err := store.ListAnswers(ctx, classroom.AnswerFilter{DateLabel: "2024-09-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("resubmission must replace, not union: %d rows", len(rows))
	}
}

func TestProgressClamped(t *testing.T) {
	d, err := draft.Start("S001", "2024-09-01", []string{"Q1", "Q2", "Q3", "Q4"})
	if err != nil {
		t.Fatal(err)
	}
	if p := d.Progress(); p != 0.25 {
		t.Fatalf("progress at first slot = %v", p)
	}
	d.EditAnswer("a")
	if err := d.Next(); err != nil {
		t.Fatal(err)
	}
	if p := d.Progress(); p != 0.5 {
		t.Fatalf("progress = %v", p)
	}
	if p := d.Progress(); p < 0 || p > 1 {
		t.Fatalf("progress out of range: %v", p)
	}
}

func TestRegistry(t *testing.T) {
	reg := draft.NewRegistry()
	d, err := draft.Start("S001", "2024-09-01", []string{"Q"})
	if err != nil {
		t.Fatal(err)
	}
	token := reg.Put(d)
	if token == "" {
		t.Fatal("expected a session token")
	}
	got, ok := reg.Get(token)
	if !ok || got != d {
		t.Fatal("registry must return the same draft")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Fatal("unknown token must miss")
	}
	reg.Delete(token)
	if _, ok := reg.Get(token); ok {
		t.Fatal("deleted token must miss")
	}
}
