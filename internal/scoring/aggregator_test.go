package scoring_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/db"
	"github.com/classtally/classtally/internal/scoring"

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

func submitAnswers(t *testing.T, store classroom.Store, sid, date, group string, n int) {
	t.Helper()
	rows := make([]classroom.AnswerRow, n)
	for i := range rows {
		rows[i] = classroom.AnswerRow{
			QuestionNo: i + 1,
			Question:   fmt.Sprintf("Q%d", i+1),
			Answer:     fmt.Sprintf("A%d", i+1),
			GroupName:  group,
		}
	}
	if err := store.ReplaceAnswers(context.Background(), sid, date, rows); err != nil {
		t.Fatal(err)
	}
}

func TestWeightedTotal(t *testing.T) {
	store := newTestStore(t)
	agg := scoring.New(store)
	ctx := context.Background()

	submitAnswers(t, store, "S1", "2024-09-01", "A", 3)
	if err := store.SaveActivityScores(ctx, "2024-09-01", []classroom.ActivityScoreRow{
		{StudentID: "S1", Score: 2.5},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveParticipation(ctx, "2024-09-01", []classroom.ParticipationRow{
		{StudentID: "S1", Count: 4},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveWeights(ctx, classroom.Weights{Answers: 1.0, Class: 2.0, Part: 0.5}); err != nil {
		t.Fatal(err)
	}

	rows, err := agg.TotalView(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one student, got %d", len(rows))
	}
	// 3*1.0 + 2.5*2.0 + 4*0.5 = 10.0
	if rows[0].Final != 10.0 {
		t.Fatalf("final = %v, want 10.0", rows[0].Final)
	}
}

func TestDateViewPlainSum(t *testing.T) {
	store := newTestStore(t)
	agg := scoring.New(store)
	ctx := context.Background()

	submitAnswers(t, store, "S1", "2024-09-01", "", 2)
	if err := store.SaveActivityScores(ctx, "2024-09-01", []classroom.ActivityScoreRow{
		{StudentID: "S1", Score: 1.5},
	}); err != nil {
		t.Fatal(err)
	}
	// S2 has only participation; other signals default to zero.
	if err := store.SaveParticipation(ctx, "2024-09-01", []classroom.ParticipationRow{
		{StudentID: "S2", Count: 3},
	}); err != nil {
		t.Fatal(err)
	}
	// Weights must not affect the date-scoped view.
	if err := store.SaveWeights(ctx, classroom.Weights{Answers: 9, Class: 9, Part: 9}); err != nil {
		t.Fatal(err)
	}

	rows, err := agg.DateView(ctx, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two students, got %d", len(rows))
	}
	byID := map[string]scoring.DateRow{}
	for _, r := range rows {
		byID[r.StudentID] = r
	}
	if got := byID["S1"].Total; got != 3.5 {
		t.Fatalf("S1 total = %v, want 3.5", got)
	}
	if got := byID["S2"]; got.AnswerCount != 0 || got.ActivityScore != 0 || got.Total != 3 {
		t.Fatalf("S2 defaults broken: %+v", got)
	}
}

func TestGroupRollup(t *testing.T) {
	store := newTestStore(t)
	agg := scoring.New(store)
	ctx := context.Background()

	submitAnswers(t, store, "S1", "2024-09-01", "A", 2)
	submitAnswers(t, store, "S2", "2024-09-01", "", 3)
	if err := store.SaveActivityScores(ctx, "2024-09-01", []classroom.ActivityScoreRow{
		{StudentID: "S1", Score: 1.0},
		{StudentID: "S2", Score: 2.0},
	}); err != nil {
		t.Fatal(err)
	}

	groups, err := agg.GroupView(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected two group rows, got %d", len(groups))
	}
	byName := map[string]scoring.GroupRow{}
	for _, g := range groups {
		byName[g.GroupName] = g
	}
	a, ok := byName["A"]
	if !ok {
		t.Fatalf("missing group A: %v", groups)
	}
	unspec, ok := byName[scoring.UnspecifiedGroup]
	if !ok {
		t.Fatalf("blank group must get the fixed label: %v", groups)
	}
	if a.AnswerCount != 2 || a.ActivityScore != 1.0 || a.Final != 3.0 {
		t.Fatalf("group A sums wrong: %+v", a)
	}
	if unspec.AnswerCount != 3 || unspec.ActivityScore != 2.0 || unspec.Final != 5.0 {
		t.Fatalf("unspecified sums wrong: %+v", unspec)
	}
}

func TestPivot(t *testing.T) {
	store := newTestStore(t)
	agg := scoring.New(store)
	ctx := context.Background()

	if err := store.SaveActivityScores(ctx, "2024-09-01", []classroom.ActivityScoreRow{
		{StudentID: "S1", Score: 2.0},
		{StudentID: "S2", Score: 1.0},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveActivityScores(ctx, "2024-09-08", []classroom.ActivityScoreRow{
		{StudentID: "S1", Score: 3.0},
	}); err != nil {
		t.Fatal(err)
	}

	rows, dates, err := agg.Pivot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || dates[0] != "2024-09-01" || dates[1] != "2024-09-08" {
		t.Fatalf("date columns wrong: %v", dates)
	}
	if len(rows) != 2 || rows[0].StudentID != "S1" {
		t.Fatalf("row order wrong: %v", rows)
	}
	if rows[0].Total != 5.0 {
		t.Fatalf("S1 total = %v, want 5.0", rows[0].Total)
	}
	if rows[1].ByDate["2024-09-08"] != 0 {
		t.Fatalf("missing cell must be zero, got %v", rows[1].ByDate["2024-09-08"])
	}
}
