package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/taskrank/internal/task"
)

// Analyzer ranks task lists. It holds configuration only, so one Analyzer
// may be used from several goroutines.
type Analyzer struct {
	policy Policy
	now    func() time.Time
	loc    *time.Location
	pinned time.Time // calendar date overriding the clock when set
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPolicy replaces the default scoring weights.
func WithPolicy(p Policy) Option {
	return func(a *Analyzer) { a.policy = p }
}

// WithClock sets the source of "today". Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithLocation sets the zone in which "today" and zone-less due dates are
// read. Defaults to the clock's own location.
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) { a.loc = loc }
}

// WithToday pins the reference date to the calendar day of d, whatever the
// clock or location say.
func WithToday(d time.Time) Option {
	return func(a *Analyzer) { a.pinned = d }
}

// NewAnalyzer creates an analyzer with the default policy and the system clock.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		policy: DefaultPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the weights in use.
func (a *Analyzer) Policy() Policy {
	return a.policy
}

// Today returns the reference date for the next analysis.
func (a *Analyzer) Today() time.Time {
	if !a.pinned.IsZero() {
		loc := a.loc
		if loc == nil {
			loc = a.pinned.Location()
		}
		return time.Date(a.pinned.Year(), a.pinned.Month(), a.pinned.Day(), 0, 0, 0, 0, loc)
	}
	now := a.now()
	if a.loc != nil {
		now = now.In(a.loc)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Scorer returns a scorer bound to the current date.
func (a *Analyzer) Scorer() *Scorer {
	return NewScorer(a.policy, a.Today())
}

// Analyze scores every task and returns copies of them sorted by score,
// highest first. Tasks with equal scores keep their input order. If any
// task fails to score, no results are returned.
func (a *Analyzer) Analyze(tasks []task.Task) ([]task.ScoredTask, error) {
	results, _, err := a.analyze(tasks, a.Today())
	return results, err
}

// Report analyzes tasks and wraps the results with run metadata. RunID and
// Sources are left for the caller.
func (a *Analyzer) Report(tasks []task.Task) (*task.Report, error) {
	today := a.Today()
	results, cycles, err := a.analyze(tasks, today)
	if err != nil {
		return nil, err
	}
	return &task.Report{
		Timestamp:  a.now(),
		Today:      today.Format(time.DateOnly),
		TotalTasks: len(tasks),
		Cycles:     cycles.Positions(),
		Results:    results,
	}, nil
}

func (a *Analyzer) analyze(tasks []task.Task, today time.Time) ([]task.ScoredTask, task.CycleSet, error) {
	s := NewScorer(a.policy, today)
	g := task.BuildGraph(tasks)
	cycles := g.Cycles()

	results := make([]task.ScoredTask, 0, len(tasks))
	for i, t := range tasks {
		score, expl, err := s.score(t, g.Dependents(i), cycles.Has(i))
		if err != nil {
			return nil, nil, fmt.Errorf("task %d (%s): %w", i, t.DisplayTitle(), err)
		}
		results = append(results, task.ScoredTask{
			Task:        t.Clone(),
			Score:       round2(score),
			Explanation: expl,
			Position:    i,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	slog.Debug("analyzed tasks", "count", len(tasks), "cycles", len(cycles), "today", today.Format(time.DateOnly))
	return results, cycles, nil
}

// SuggestTop returns the n highest-scoring tasks. n larger than the list
// returns every task; n <= 0 returns none.
func (a *Analyzer) SuggestTop(tasks []task.Task, n int) ([]task.Suggestion, error) {
	results, err := a.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	return Top(results, n), nil
}

// Top projects the first n scored tasks to suggestions.
func Top(results []task.ScoredTask, n int) []task.Suggestion {
	n = max(0, min(n, len(results)))
	out := make([]task.Suggestion, 0, n)
	for _, r := range results[:n] {
		out = append(out, task.Suggestion{
			Title:       r.DisplayTitle(),
			Score:       r.Score,
			Explanation: r.Explanation,
		})
	}
	return out
}

// Analyze ranks tasks with the default policy and the system clock.
func Analyze(tasks []task.Task) ([]task.ScoredTask, error) {
	return NewAnalyzer().Analyze(tasks)
}

// SuggestTop returns the top n tasks with the default policy and the
// system clock.
func SuggestTop(tasks []task.Task, n int) ([]task.Suggestion, error) {
	return NewAnalyzer().SuggestTop(tasks, n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
