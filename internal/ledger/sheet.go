package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/classtally/classtally/internal/classroom"
)

// Sheet is the in-memory participation tally for one date label. It is the
// source of truth for instructor adjustments until explicitly saved.
type Sheet struct {
	mu        sync.Mutex
	dateLabel string
	counts    map[string]int
}

func (s *Sheet) DateLabel() string { return s.dateLabel }

// Adjust increments or decrements a student's tally, clamped at zero.
// Adjusting an unknown student adds them to the sheet.
func (s *Sheet) Adjust(studentID string, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.counts[studentID] + delta
	if n < 0 {
		n = 0
	}
	s.counts[studentID] = n
	return n
}

// Rows returns the sheet sorted by student id.
func (s *Sheet) Rows() []classroom.ParticipationRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]classroom.ParticipationRow, 0, len(s.counts))
	for sid, n := range s.counts {
		out = append(out, classroom.ParticipationRow{StudentID: sid, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// Sheets keeps one live sheet per date label so instructor adjustments
// survive across requests until saved.
type Sheets struct {
	mu     sync.Mutex
	byDate map[string]*Sheet
}

func NewSheets() *Sheets {
	return &Sheets{byDate: make(map[string]*Sheet)}
}

// GetOrLoad returns the live sheet for the date, loading it through the
// ledger on first access.
func (ss *Sheets) GetOrLoad(ctx context.Context, l *Ledger, dateLabel string) (*Sheet, error) {
	ss.mu.Lock()
	if sheet, ok := ss.byDate[dateLabel]; ok {
		ss.mu.Unlock()
		return sheet, nil
	}
	ss.mu.Unlock()

	sheet, err := l.LoadSheet(ctx, dateLabel)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if existing, ok := ss.byDate[dateLabel]; ok {
		return existing, nil
	}
	ss.byDate[dateLabel] = sheet
	return sheet, nil
}

// Drop discards the live sheet after a save so the next load reflects the
// stored counts.
func (ss *Sheets) Drop(dateLabel string) {
	ss.mu.Lock()
	delete(ss.byDate, dateLabel)
	ss.mu.Unlock()
}
