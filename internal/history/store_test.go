package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/taskrank/internal/task"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport(ts time.Time) *task.Report {
	return &task.Report{
		Timestamp:  ts,
		Today:      ts.Format(time.DateOnly),
		Sources:    []string{"a.json", "b.yaml"},
		TotalTasks: 3,
		Cycles:     []int{2},
		Results: []task.ScoredTask{
			{Task: task.Task{Title: "Hotfix payment"}, Score: 91, Explanation: "Importance 9: +54"},
			{Task: task.Task{}, Score: 40.5, Explanation: "Due in 1 days: +40"},
			{Task: task.Task{Title: "loop"}, Score: 20, Explanation: "In circular dependency: -10"},
		},
	}
}

func TestRecordAndScores(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	report := testReport(time.Date(2025, 11, 24, 9, 0, 0, 0, time.UTC))
	run, err := s.Record(ctx, report)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if run.ID == "" || report.RunID != run.ID {
		t.Fatalf("expected run id written back to report, got %q / %q", run.ID, report.RunID)
	}
	if run.Source != "a.json, b.yaml" || run.TaskCount != 3 || run.CycleCount != 1 {
		t.Errorf("unexpected run: %+v", run)
	}

	got, scores, err := s.Scores(ctx, run.ID)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if !got.CreatedAt.Equal(report.Timestamp) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, report.Timestamp)
	}
	want := []Score{
		{Rank: 1, Title: "Hotfix payment", Score: 91, Explanation: "Importance 9: +54"},
		{Rank: 2, Title: task.DefaultTitle, Score: 40.5, Explanation: "Due in 1 days: +40"},
		{Rank: 3, Title: "loop", Score: 20, Explanation: "In circular dependency: -10"},
	}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_KeepsGivenRunID(t *testing.T) {
	s := openTemp(t)
	report := testReport(time.Now())
	report.RunID = "fixed-id"

	run, err := s.Record(context.Background(), report)
	if err != nil {
		t.Fatal(err)
	}
	if run.ID != "fixed-id" {
		t.Errorf("run id = %q, want fixed-id", run.ID)
	}
	if _, err := s.Record(context.Background(), report); err == nil {
		t.Error("expected error recording the same run id twice")
	}
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.Record(ctx, testReport(base.Add(time.Duration(i)*time.Hour)))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if runs[i].ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != ids[2] {
		t.Errorf("limit 2: got %+v", limited)
	}
}

func TestScores_Prefix(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	report := testReport(time.Now())
	report.RunID = "abc123-run"
	if _, err := s.Record(ctx, report); err != nil {
		t.Fatal(err)
	}

	run, scores, err := s.Scores(ctx, "abc1")
	if err != nil {
		t.Fatalf("prefix lookup: %v", err)
	}
	if run.ID != "abc123-run" || len(scores) != 3 {
		t.Errorf("got run %s with %d scores", run.ID, len(scores))
	}
}

func TestScores_Ambiguous(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for _, id := range []string{"same-1", "same-2"} {
		r := testReport(time.Now())
		r.RunID = id
		if _, err := s.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	_, _, err := s.Scores(ctx, "same")
	if err == nil || errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}

func TestScores_NotFound(t *testing.T) {
	s := openTemp(t)
	for _, id := range []string{"missing", ""} {
		_, _, err := s.Scores(context.Background(), id)
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("id %q: expected ErrRunNotFound, got %v", id, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, testReport(time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after reopen, got %d", len(runs))
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(); got != filepath.Join(".taskrank", "history.db") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
