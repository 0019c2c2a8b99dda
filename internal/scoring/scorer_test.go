package scoring

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/taskrank/internal/task"
)

var today = time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)

func scoreOne(t *testing.T, s *Scorer, tk task.Task) (float64, string) {
	t.Helper()
	score, expl, err := s.Score(tk, []task.Task{tk}, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return score, expl
}

func TestScore_Overdue(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	// importance 1 (+6), 2h (+12) → urgency is the remainder
	score, expl := scoreOne(t, s, task.Task{Title: "late", DueDate: "2025-11-19", Importance: task.Int(1), EstimatedHours: task.Int(2)})

	if urgency := score - 6 - 12; urgency != 120 {
		t.Errorf("urgency term = %v, want 120", urgency)
	}
	if !strings.HasPrefix(expl, "Overdue by 5 days: +120") {
		t.Errorf("explanation should start with overdue text, got %q", expl)
	}
}

func TestScore_UrgencyWindows(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	tests := []struct {
		due     string
		urgency float64
		text    string
	}{
		{"2025-11-24", 40, "Due in 0 days: +40"},
		{"2025-11-27", 40, "Due in 3 days: +40"},
		{"2025-11-28", 6, "Due in 4 days: +6"},
		{"2025-12-03", 1, "Due in 9 days: +1"},
		{"2025-12-04", 0, "Due in 10 days: +0"},
		{"2026-01-30", 0, "Due in 67 days: +0"},
	}
	for _, tt := range tests {
		tk := task.Task{DueDate: tt.due, Importance: task.Int(1), EstimatedHours: task.Int(1)}
		score, expl := scoreOne(t, s, tk)
		if got := score - 6 - 12; got != tt.urgency {
			t.Errorf("due %s: urgency = %v, want %v", tt.due, got, tt.urgency)
		}
		if !strings.HasPrefix(expl, tt.text+";") {
			t.Errorf("due %s: explanation %q should start with %q", tt.due, expl, tt.text)
		}
	}
}

func TestScore_MissingOrBadDateIsNeverDue(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	for _, due := range []string{"", "someday"} {
		score, expl := scoreOne(t, s, task.Task{DueDate: due})
		// defaults: importance 5 (+30), 1h (+12), no urgency
		if score != 42 {
			t.Errorf("due %q: score = %v, want 42", due, score)
		}
		if !strings.Contains(expl, ": +0;") {
			t.Errorf("due %q: expected zero urgency in %q", due, expl)
		}
	}
}

func TestScore_EffortBoundary(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)
	base := task.Task{Importance: task.Int(1)} // far future, +6

	two := base
	two.EstimatedHours = task.Int(2)
	score, expl := scoreOne(t, s, two)
	if score != 6+12 {
		t.Errorf("2h: score = %v, want 18", score)
	}
	if !strings.Contains(expl, "Quick win (<=2h): +12") {
		t.Errorf("2h: expected quick win text, got %q", expl)
	}

	three := base
	three.EstimatedHours = task.Int(3)
	score, expl = scoreOne(t, s, three)
	if score != 6-1.5 {
		t.Errorf("3h: score = %v, want 4.5", score)
	}
	if !strings.Contains(expl, "High effort (3h): -1.5") {
		t.Errorf("3h: expected penalty text, got %q", expl)
	}
}

func TestScore_DependentsBonus(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)
	tasks := []task.Task{
		{Title: "A"},
		{Title: "B", Dependencies: []int{0}},
	}

	a, aExpl, err := s.Score(tasks[0], tasks, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, bExpl, err := s.Score(tasks[1], tasks, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	if a-b != 15 {
		t.Errorf("A should lead B by the dependents bonus, got A=%v B=%v", a, b)
	}
	if !strings.Contains(aExpl, "Has 1 dependent(s): +15") {
		t.Errorf("A explanation missing dependents: %q", aExpl)
	}
	if strings.Contains(bExpl, "dependent") {
		t.Errorf("B has no dependents, got %q", bExpl)
	}
}

func TestScore_CyclePenalty(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)
	tasks := []task.Task{
		{Title: "A", Dependencies: []int{1}},
		{Title: "B", Dependencies: []int{0}},
	}
	cycles := task.DetectCycles(tasks)

	score, expl, err := s.Score(tasks[0], tasks, 0, cycles)
	if err != nil {
		t.Fatal(err)
	}
	// 30 importance + 12 quick win + 15 dependent - 10 cycle
	if score != 47 {
		t.Errorf("score = %v, want 47", score)
	}
	if !strings.HasSuffix(expl, "In circular dependency: -10") {
		t.Errorf("cycle text should come last, got %q", expl)
	}
}

func TestScore_Defaulting(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	bare := task.Task{Title: "x", DueDate: "2025-11-30"}
	explicit := task.Task{Title: "x", DueDate: "2025-11-30", Importance: task.Int(5), EstimatedHours: task.Int(1), Dependencies: []int{}}
	zeroed := task.Task{Title: "x", DueDate: "2025-11-30", Importance: task.Int(0), EstimatedHours: task.Text("")}

	s1, e1 := scoreOne(t, s, bare)
	s2, e2 := scoreOne(t, s, explicit)
	s3, e3 := scoreOne(t, s, zeroed)
	if s1 != s2 || e1 != e2 {
		t.Errorf("bare (%v, %q) != explicit (%v, %q)", s1, e1, s2, e2)
	}
	if s1 != s3 || e1 != e3 {
		t.Errorf("bare (%v, %q) != zeroed (%v, %q)", s1, e1, s3, e3)
	}
}

func TestScore_StringNumbersCoerce(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	a, _ := scoreOne(t, s, task.Task{Importance: task.Text("8"), EstimatedHours: task.Float(3.9)})
	b, _ := scoreOne(t, s, task.Task{Importance: task.Int(8), EstimatedHours: task.Int(3)})
	if a != b {
		t.Errorf("coerced score %v != typed score %v", a, b)
	}
}

func TestScore_ConversionFailure(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)

	_, _, err := s.Score(task.Task{Importance: task.Text("urgent")}, nil, 0, nil)
	if !errors.Is(err, task.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	if !strings.Contains(err.Error(), "importance") {
		t.Errorf("error should name the field, got %v", err)
	}

	_, _, err = s.Score(task.Task{EstimatedHours: task.Text("a while")}, nil, 0, nil)
	if !errors.Is(err, task.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestScore_CustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.OverdueBoost = 500
	p.EffortFreeHours = 4
	s := NewScorer(p, today)

	score, expl := scoreOne(t, s, task.Task{DueDate: "2025-11-01", Importance: task.Int(1), EstimatedHours: task.Int(4)})
	if score != 500+6+12 {
		t.Errorf("score = %v, want 518", score)
	}
	if !strings.Contains(expl, "Overdue by 23 days: +500") || !strings.Contains(expl, "Quick win (<=4h)") {
		t.Errorf("explanation should reflect policy, got %q", expl)
	}
}

func TestScore_ExplanationOrder(t *testing.T) {
	s := NewScorer(DefaultPolicy(), today)
	tasks := []task.Task{
		{Title: "A", DueDate: "2025-11-25", Importance: task.Int(9), EstimatedHours: task.Int(4), Dependencies: []int{1}},
		{Title: "B", Dependencies: []int{0}},
	}

	_, expl, err := s.Score(tasks[0], tasks, 0, task.DetectCycles(tasks))
	if err != nil {
		t.Fatal(err)
	}
	want := "Due in 1 days: +40; Importance 9: +54; High effort (4h): -3.0; Has 1 dependent(s): +15; In circular dependency: -10"
	if expl != want {
		t.Errorf("explanation =\n  %q\nwant\n  %q", expl, want)
	}
}
