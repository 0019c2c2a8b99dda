// Package history records the output of analysis runs in a local SQLite file
// so rankings can be compared over time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/ppiankov/taskrank/internal/task"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by Scores when no run has the given id.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    created_at  TEXT NOT NULL,
    source      TEXT NOT NULL DEFAULT '',
    task_count  INTEGER NOT NULL,
    cycle_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scores (
    run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    rank        INTEGER NOT NULL,
    title       TEXT NOT NULL,
    score       REAL NOT NULL,
    explanation TEXT NOT NULL,
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Run is one recorded analysis.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	TaskCount  int       `json:"task_count"`
	CycleCount int       `json:"cycle_count"`
}

// Score is one ranked row of a recorded run. Rank starts at 1.
type Score struct {
	Rank        int     `json:"rank"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database path.
func DefaultPath() string {
	return filepath.Join(".taskrank", "history.db")
}

// Open opens (or creates) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a report and its ranking in one transaction. A report
// without a RunID gets a fresh one, which is also written back to the report.
func (s *Store) Record(ctx context.Context, report *task.Report) (Run, error) {
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}
	created := report.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	run := Run{
		ID:         report.RunID,
		CreatedAt:  created.UTC(),
		Source:     strings.Join(report.Sources, ", "),
		TaskCount:  report.TotalTasks,
		CycleCount: len(report.Cycles),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, task_count, cycle_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), run.Source, run.TaskCount, run.CycleCount)
	if err != nil {
		return Run{}, fmt.Errorf("history: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (run_id, rank, title, score, explanation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("history: prepare score insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range report.Results {
		if _, err := stmt.ExecContext(ctx, run.ID, i+1, r.DisplayTitle(), r.Score, r.Explanation); err != nil {
			return Run{}, fmt.Errorf("history: insert score %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("history: commit: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. A limit of zero or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, created_at, source, task_count, cycle_count FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		r       Run
		created string
	)
	if err := rows.Scan(&r.ID, &created, &r.Source, &r.TaskCount, &r.CycleCount); err != nil {
		return Run{}, fmt.Errorf("history: scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("history: run %s created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	return r, nil
}

// Scores returns the ranking recorded for runID. The id may be a unique
// prefix of a full run id.
func (s *Store) Scores(ctx context.Context, runID string) (Run, []Score, error) {
	run, err := s.findRun(ctx, runID)
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, title, score, explanation FROM scores WHERE run_id = ? ORDER BY rank`, run.ID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("history: query scores: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.Rank, &sc.Title, &sc.Score, &sc.Explanation); err != nil {
			return Run{}, nil, fmt.Errorf("history: scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("history: read scores: %w", err)
	}
	return run, scores, nil
}

func (s *Store) findRun(ctx context.Context, idPrefix string) (Run, error) {
	if idPrefix == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, task_count, cycle_count FROM runs WHERE id LIKE ? || '%' LIMIT 2`, idPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("history: find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("history: find run: %w", err)
	}

	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("history: run id %q is ambiguous", idPrefix)
	}
}
