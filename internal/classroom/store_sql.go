package classroom

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// SaveQuestionSet replaces the whole set for a date label: delete, then insert
// the non-blank questions renumbered 1..N. Last writer wins across instructors.
func (s *SQLStore) SaveQuestionSet(ctx context.Context, dateLabel string, questions []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM question_sets WHERE date_label=$1`, dateLabel); err != nil {
		return err
	}
	no := 0
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		no++
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO question_sets (date_label, question_no, question) VALUES ($1,$2,$3)`,
			dateLabel, no, q); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResolveQuestions returns the stored set ordered by question_no, or the
// built-in default set when the label is blank or has no rows.
func (s *SQLStore) ResolveQuestions(ctx context.Context, dateLabel string) ([]string, error) {
	if strings.TrimSpace(dateLabel) == "" {
		return append([]string(nil), DefaultQuestions...), nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT question FROM question_sets WHERE date_label=$1 ORDER BY question_no`, dateLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultQuestions...), nil
	}
	return out, nil
}

func (s *SQLStore) ListQuestionDates(ctx context.Context) ([]string, error) {
	return s.distinctDates(ctx, `SELECT DISTINCT date_label FROM question_sets ORDER BY date_label DESC`)
}

func (s *SQLStore) ListAnswerDates(ctx context.Context) ([]string, error) {
	return s.distinctDates(ctx, `SELECT DISTINCT date_label FROM answers ORDER BY date_label DESC`)
}

func (s *SQLStore) distinctDates(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReplaceAnswers deletes every row for (studentID, dateLabel) and inserts the
// new set in one transaction. Resubmission never unions with prior rows.
func (s *SQLStore) ReplaceAnswers(ctx context.Context, studentID, dateLabel string, rows []AnswerRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM answers WHERE student_id=$1 AND date_label=$2`, studentID, dateLabel); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (student_id, date_label, question_no, question, answer, group_name, checked)
			 VALUES ($1,$2,$3,$4,$5,$6,0)`,
			studentID, dateLabel, r.QuestionNo, r.Question, r.Answer, r.GroupName); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListAnswers(ctx context.Context, f AnswerFilter) ([]AnswerRow, error) {
	var where []string
	var args []any
	if f.DateLabel != "" && !f.AllDates {
		args = append(args, f.DateLabel)
		where = append(where, fmt.Sprintf("date_label = $%d", len(args)))
	}
	if f.StudentContains != "" {
		args = append(args, f.StudentContains)
		// LIKE is case-insensitive under SQLite's default collation, so use a
		// position function for exact containment on both drivers.
		fn := "instr"
		if s.driver == "postgres" {
			fn = "strpos"
		}
		where = append(where, fmt.Sprintf("%s(student_id, $%d) > 0", fn, len(args)))
	}
	wh := ""
	if len(where) > 0 {
		wh = " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, date_label, question_no, question, answer, group_name, checked
		 FROM answers`+wh+` ORDER BY student_id, question_no`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerRow
	for rows.Next() {
		var r AnswerRow
		var checked int
		if err := rows.Scan(&r.ID, &r.StudentID, &r.DateLabel, &r.QuestionNo, &r.Question, &r.Answer, &r.GroupName, &checked); err != nil {
			return nil, err
		}
		r.Checked = checked != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetChecked(ctx context.Context, ids []int64, checked bool) error {
	if len(ids) == 0 {
		return nil
	}
	val := 0
	if checked {
		val = 1
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, val)
	ph := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE answers SET checked=$1 WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	return err
}

// RecordLogin is idempotent: the first login for (studentID, dateLabel) wins
// and later ones are silent no-ops. Blank arguments are ignored.
func (s *SQLStore) RecordLogin(ctx context.Context, studentID, dateLabel string) error {
	studentID = strings.TrimSpace(studentID)
	dateLabel = strings.TrimSpace(dateLabel)
	if studentID == "" || dateLabel == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logins (student_id, date_label, logged_at) VALUES ($1,$2,$3)
		 ON CONFLICT (student_id, date_label) DO NOTHING`,
		studentID, dateLabel, time.Now().Unix())
	return err
}

// ListLogins returns one day's roll call chronologically when filtered, and
// the global view most-recent-first when not.
func (s *SQLStore) ListLogins(ctx context.Context, dateLabel string) ([]LoginEvent, error) {
	var rows *sql.Rows
	var err error
	if dateLabel != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT student_id, date_label, logged_at FROM logins WHERE date_label=$1 ORDER BY logged_at`, dateLabel)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT student_id, date_label, logged_at FROM logins ORDER BY logged_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoginEvent
	for rows.Next() {
		var e LoginEvent
		if err := rows.Scan(&e.StudentID, &e.DateLabel, &e.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveParticipation replaces the stored count for every student in the batch.
// Students outside the batch keep their prior counts.
func (s *SQLStore) SaveParticipation(ctx context.Context, dateLabel string, rows []ParticipationRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO participation (student_id, date_label, count) VALUES ($1,$2,$3)
			 ON CONFLICT (student_id, date_label) DO UPDATE SET count=excluded.count`,
			r.StudentID, dateLabel, r.Count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ParticipationCounts(ctx context.Context, dateLabel string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, count FROM participation WHERE date_label=$1`, dateLabel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var sid string
		var n int
		if err := rows.Scan(&sid, &n); err != nil {
			return nil, err
		}
		out[sid] = n
	}
	return out, rows.Err()
}

// SaveActivityScores replaces the score for every (student, dateLabel) in the
// batch, discarding whatever was stored for that exact pair.
func (s *SQLStore) SaveActivityScores(ctx context.Context, dateLabel string, rows []ActivityScoreRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activity_scores (student_id, date_label, score, note) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (student_id, date_label) DO UPDATE SET score=excluded.score, note=excluded.note`,
			r.StudentID, dateLabel, r.Score, r.Note); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListActivityScores(ctx context.Context, dateLabel string) ([]ActivityScoreRow, error) {
	var rows *sql.Rows
	var err error
	if dateLabel != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT student_id, date_label, score, note FROM activity_scores WHERE date_label=$1 ORDER BY student_id`, dateLabel)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT student_id, date_label, score, note FROM activity_scores ORDER BY date_label, student_id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityScoreRow
	for rows.Next() {
		var r ActivityScoreRow
		if err := rows.Scan(&r.StudentID, &r.DateLabel, &r.Score, &r.Note); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) AnswerCounts(ctx context.Context, dateLabel string) (map[string]int, error) {
	query := `SELECT student_id, COUNT(*) FROM answers GROUP BY student_id`
	var args []any
	if dateLabel != "" {
		query = `SELECT student_id, COUNT(*) FROM answers WHERE date_label=$1 GROUP BY student_id`
		args = append(args, dateLabel)
	}
	return s.intMap(ctx, query, args...)
}

func (s *SQLStore) ParticipationTotals(ctx context.Context, dateLabel string) (map[string]int, error) {
	query := `SELECT student_id, SUM(count) FROM participation GROUP BY student_id`
	var args []any
	if dateLabel != "" {
		query = `SELECT student_id, SUM(count) FROM participation WHERE date_label=$1 GROUP BY student_id`
		args = append(args, dateLabel)
	}
	return s.intMap(ctx, query, args...)
}

func (s *SQLStore) ActivityTotals(ctx context.Context, dateLabel string) (map[string]float64, error) {
	query := `SELECT student_id, SUM(score) FROM activity_scores GROUP BY student_id`
	var args []any
	if dateLabel != "" {
		query = `SELECT student_id, SUM(score) FROM activity_scores WHERE date_label=$1 GROUP BY student_id`
		args = append(args, dateLabel)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var sid string
		var v float64
		if err := rows.Scan(&sid, &v); err != nil {
			return nil, err
		}
		out[sid] = v
	}
	return out, rows.Err()
}

// StudentGroups resolves each student's group label as the lexical maximum of
// their non-null group names in scope. Inconsistent labels across submissions
// therefore resolve arbitrarily; kept to match the stored data as-is.
func (s *SQLStore) StudentGroups(ctx context.Context, dateLabel string) (map[string]string, error) {
	query := `SELECT student_id, MAX(COALESCE(group_name,'')) FROM answers GROUP BY student_id`
	var args []any
	if dateLabel != "" {
		query = `SELECT student_id, MAX(COALESCE(group_name,'')) FROM answers WHERE date_label=$1 GROUP BY student_id`
		args = append(args, dateLabel)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var sid, g string
		if err := rows.Scan(&sid, &g); err != nil {
			return nil, err
		}
		out[sid] = g
	}
	return out, rows.Err()
}

func (s *SQLStore) LoadWeights(ctx context.Context) (Weights, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT w_answers, w_class, w_part FROM score_weights WHERE id=1`)
	var w Weights
	if err := row.Scan(&w.Answers, &w.Class, &w.Part); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultWeights, nil
		}
		return Weights{}, err
	}
	return w, nil
}

func (s *SQLStore) SaveWeights(ctx context.Context, w Weights) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO score_weights (id, w_answers, w_class, w_part) VALUES (1,$1,$2,$3)
		 ON CONFLICT (id) DO UPDATE SET
		   w_answers=excluded.w_answers, w_class=excluded.w_class, w_part=excluded.w_part`,
		w.Answers, w.Class, w.Part)
	return err
}

func (s *SQLStore) intMap(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var sid string
		var n int
		if err := rows.Scan(&sid, &n); err != nil {
			return nil, err
		}
		out[sid] = n
	}
	return out, rows.Err()
}
