// Package scoring combines independently entered signals (answers, activity
// scores, participation) into per-student and per-group totals.
package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/classtally/classtally/internal/classroom"
)

// UnspecifiedGroup labels rollup rows for students with a blank group name.
const UnspecifiedGroup = "(unspecified)"

// DateRow is one student's line in the date-scoped view: a plain sum, no
// weighting.
type DateRow struct {
	StudentID     string  `json:"student_id"`
	AnswerCount   int     `json:"answer_count"`
	ActivityScore float64 `json:"activity_score"`
	Participation int     `json:"participation"`
	Total         float64 `json:"total"`
}

// TotalRow is one student's line in the all-time weighted view.
type TotalRow struct {
	StudentID     string  `json:"student_id"`
	GroupName     string  `json:"group_name"`
	AnswerCount   int     `json:"answer_count"`
	ActivityScore float64 `json:"activity_score"`
	Participation int     `json:"participation"`
	Final         float64 `json:"final"`
}

// GroupRow sums every numeric column of its members, final score included.
type GroupRow struct {
	GroupName     string  `json:"group_name"`
	AnswerCount   int     `json:"answer_count"`
	ActivityScore float64 `json:"activity_score"`
	Participation int     `json:"participation"`
	Final         float64 `json:"final"`
}

// PivotRow is one student's activity scores spread across date labels, with a
// running total; the date columns come back alongside from Pivot.
type PivotRow struct {
	StudentID string             `json:"student_id"`
	ByDate    map[string]float64 `json:"by_date"`
	Total     float64            `json:"total"`
}

type Aggregator struct {
	store classroom.Store
}

func New(store classroom.Store) *Aggregator {
	return &Aggregator{store: store}
}

// DateView joins answer counts, activity scores, and participation for one
// date label. Missing signals default to zero; no weighting is applied.
func (a *Aggregator) DateView(ctx context.Context, dateLabel string) ([]DateRow, error) {
	counts, err := a.store.AnswerCounts(ctx, dateLabel)
	if err != nil {
		return nil, err
	}
	scores, err := a.store.ActivityTotals(ctx, dateLabel)
	if err != nil {
		return nil, err
	}
	part, err := a.store.ParticipationTotals(ctx, dateLabel)
	if err != nil {
		return nil, err
	}

	rows := make([]DateRow, 0, len(counts))
	for _, sid := range unionKeys(counts, scores, part) {
		r := DateRow{
			StudentID:     sid,
			AnswerCount:   counts[sid],
			ActivityScore: round2(scores[sid]),
			Participation: part[sid],
		}
		r.Total = round2(float64(r.AnswerCount) + r.ActivityScore + float64(r.Participation))
		rows = append(rows, r)
	}
	return rows, nil
}

// TotalView is the all-time weighted view: per-student sums across every date
// label combined as answers*wAnswers + activity*wClass + participation*wPart.
func (a *Aggregator) TotalView(ctx context.Context) ([]TotalRow, error) {
	w, err := a.store.LoadWeights(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := a.store.AnswerCounts(ctx, "")
	if err != nil {
		return nil, err
	}
	scores, err := a.store.ActivityTotals(ctx, "")
	if err != nil {
		return nil, err
	}
	part, err := a.store.ParticipationTotals(ctx, "")
	if err != nil {
		return nil, err
	}
	groups, err := a.store.StudentGroups(ctx, "")
	if err != nil {
		return nil, err
	}

	rows := make([]TotalRow, 0, len(counts))
	for _, sid := range unionKeys(counts, scores, part) {
		r := TotalRow{
			StudentID:     sid,
			GroupName:     groups[sid],
			AnswerCount:   counts[sid],
			ActivityScore: round2(scores[sid]),
			Participation: part[sid],
		}
		r.Final = round2(float64(r.AnswerCount)*w.Answers + r.ActivityScore*w.Class + float64(r.Participation)*w.Part)
		rows = append(rows, r)
	}
	return rows, nil
}

// GroupView rolls the weighted rows up by group name, substituting the fixed
// unspecified label for blank groups.
func (a *Aggregator) GroupView(ctx context.Context) ([]GroupRow, error) {
	students, err := a.TotalView(ctx)
	if err != nil {
		return nil, err
	}
	return RollUp(students), nil
}

// RollUp sums every numeric column per group, including the already-weighted
// final score.
func RollUp(students []TotalRow) []GroupRow {
	byGroup := map[string]*GroupRow{}
	for _, s := range students {
		name := s.GroupName
		if name == "" {
			name = UnspecifiedGroup
		}
		g, ok := byGroup[name]
		if !ok {
			g = &GroupRow{GroupName: name}
			byGroup[name] = g
		}
		g.AnswerCount += s.AnswerCount
		g.ActivityScore = round2(g.ActivityScore + s.ActivityScore)
		g.Participation += s.Participation
		g.Final = round2(g.Final + s.Final)
	}
	out := make([]GroupRow, 0, len(byGroup))
	for _, g := range byGroup {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out
}

// Pivot spreads activity scores into a student-by-date matrix with per-student
// totals, for the score overview export. The returned slice of date labels is
// the sorted column order.
func (a *Aggregator) Pivot(ctx context.Context) ([]PivotRow, []string, error) {
	scores, err := a.store.ListActivityScores(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	dates := map[string]bool{}
	byStudent := map[string]map[string]float64{}
	for _, s := range scores {
		dates[s.DateLabel] = true
		m, ok := byStudent[s.StudentID]
		if !ok {
			m = map[string]float64{}
			byStudent[s.StudentID] = m
		}
		m[s.DateLabel] += s.Score
	}

	cols := make([]string, 0, len(dates))
	for d := range dates {
		cols = append(cols, d)
	}
	sort.Strings(cols)

	rows := make([]PivotRow, 0, len(byStudent))
	for sid, m := range byStudent {
		r := PivotRow{StudentID: sid, ByDate: map[string]float64{}}
		for _, d := range cols {
			v := round2(m[d])
			r.ByDate[d] = v
			r.Total = round2(r.Total + v)
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StudentID < rows[j].StudentID })
	return rows, cols, nil
}

// unionKeys merges student ids across the signal maps, sorted for stable
// output.
func unionKeys(counts map[string]int, scores map[string]float64, part map[string]int) []string {
	seen := map[string]bool{}
	for sid := range counts {
		seen[sid] = true
	}
	for sid := range scores {
		seen[sid] = true
	}
	for sid := range part {
		seen[sid] = true
	}
	out := make([]string, 0, len(seen))
	for sid := range seen {
		out = append(out, sid)
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
