package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:classtally.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/classtally?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	dbh, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := dbh.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, dbh, driver); err != nil {
		return nil, err
	}
	return dbh, nil
}

// EnsureSchema creates the six tables if missing. Safe to run repeatedly.
func EnsureSchema(ctx context.Context, dbh *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := dbh.ExecContext(ctx, schema)
	return err
}

// The four per-(student_id, date_label) tables are updated independently and
// carry no foreign keys between them; a participation count may exist for a
// student who never logged in or answered.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  question TEXT NOT NULL,
  answer TEXT NOT NULL,
  group_name TEXT NOT NULL DEFAULT '',
  checked INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_answers_pair ON answers(student_id, date_label);

CREATE TABLE IF NOT EXISTS question_sets (
  date_label TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  question TEXT NOT NULL,
  PRIMARY KEY (date_label, question_no)
);

CREATE TABLE IF NOT EXISTS logins (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  logged_at INTEGER NOT NULL,
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS participation (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS activity_scores (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  score REAL NOT NULL DEFAULT 0,
  note TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS score_weights (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  w_answers REAL NOT NULL DEFAULT 1.0,
  w_class REAL NOT NULL DEFAULT 1.0,
  w_part REAL NOT NULL DEFAULT 1.0
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS answers (
  id BIGSERIAL PRIMARY KEY,
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  question TEXT NOT NULL,
  answer TEXT NOT NULL,
  group_name TEXT NOT NULL DEFAULT '',
  checked INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_answers_pair ON answers(student_id, date_label);

CREATE TABLE IF NOT EXISTS question_sets (
  date_label TEXT NOT NULL,
  question_no INTEGER NOT NULL,
  question TEXT NOT NULL,
  PRIMARY KEY (date_label, question_no)
);

CREATE TABLE IF NOT EXISTS logins (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  logged_at BIGINT NOT NULL,
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS participation (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS activity_scores (
  student_id TEXT NOT NULL,
  date_label TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  note TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (student_id, date_label)
);

CREATE TABLE IF NOT EXISTS score_weights (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  w_answers DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  w_class DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  w_part DOUBLE PRECISION NOT NULL DEFAULT 1.0
);
`
