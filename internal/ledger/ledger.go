// Package ledger covers attendance logins and the per-date participation
// tally. Both signals are independent of the answer draft and of each other.
package ledger

import (
	"context"
	"strings"

	"github.com/classtally/classtally/internal/classroom"
)

type Ledger struct {
	store classroom.Store
}

func New(store classroom.Store) *Ledger {
	return &Ledger{store: store}
}

// RecordLogin is a silent no-op when either argument is blank after trimming;
// otherwise at most one login row ever exists per (student, date).
func (l *Ledger) RecordLogin(ctx context.Context, studentID, dateLabel string) error {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(dateLabel) == "" {
		return nil
	}
	return l.store.RecordLogin(ctx, studentID, dateLabel)
}

// ListLogins preserves the store's ordering asymmetry: chronological for a
// single day's roll call, most-recent-first for the global view.
func (l *Ledger) ListLogins(ctx context.Context, dateLabel string) ([]classroom.LoginEvent, error) {
	return l.store.ListLogins(ctx, strings.TrimSpace(dateLabel))
}

// LoadSheet builds the participation sheet for a date: every student who
// logged in that day plus every student with a stored count, seeded with the
// stored counts (zero for the rest).
func (l *Ledger) LoadSheet(ctx context.Context, dateLabel string) (*Sheet, error) {
	dateLabel = strings.TrimSpace(dateLabel)
	logins, err := l.store.ListLogins(ctx, dateLabel)
	if err != nil {
		return nil, err
	}
	stored, err := l.store.ParticipationCounts(ctx, dateLabel)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(stored))
	for sid, n := range stored {
		counts[sid] = n
	}
	for _, e := range logins {
		if _, ok := counts[e.StudentID]; !ok {
			counts[e.StudentID] = 0
		}
	}
	return &Sheet{dateLabel: dateLabel, counts: counts}, nil
}

// SaveSheet persists the sheet as a full replace for every student on it;
// students not on the sheet keep their previously stored counts.
func (l *Ledger) SaveSheet(ctx context.Context, s *Sheet) error {
	return l.store.SaveParticipation(ctx, s.dateLabel, s.Rows())
}
