package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/taskrank/internal/task"
)

// Scorer computes the score of individual tasks against a fixed "today".
type Scorer struct {
	policy Policy
	today  time.Time
}

// NewScorer creates a scorer. today's calendar date in its own location is
// the reference for urgency, and that location is used to read due dates.
func NewScorer(policy Policy, today time.Time) *Scorer {
	return &Scorer{policy: policy, today: today}
}

// Score returns the score and explanation of the task at position idx of
// all. cycles is the cycle membership of all, as returned by
// task.DetectCycles. The only error is a numeric field that cannot be
// coerced, wrapping task.ErrConversion.
func (s *Scorer) Score(t task.Task, all []task.Task, idx int, cycles task.CycleSet) (float64, string, error) {
	return s.score(t, task.CountDependents(all, idx), cycles.Has(idx))
}

func (s *Scorer) score(t task.Task, dependents int, inCycle bool) (float64, string, error) {
	p := s.policy

	importance, err := t.Importance.IntOr(DefaultImportance)
	if err != nil {
		return 0, "", fmt.Errorf("importance: %w", err)
	}
	hours, err := t.EstimatedHours.IntOr(DefaultEstimatedHours)
	if err != nil {
		return 0, "", fmt.Errorf("estimated_hours: %w", err)
	}

	due := FarFuture
	if t.DueDate != "" {
		due = NormalizeDate(t.DueDate, s.today.Location())
	}
	days := daysBetween(s.today, due)

	var score float64
	var expl []string

	switch {
	case days < 0:
		score += p.OverdueBoost
		expl = append(expl, fmt.Sprintf("Overdue by %d days: +%s", -days, num(p.OverdueBoost)))
	case days <= p.SoonWindowDays:
		score += p.SoonBoost
		expl = append(expl, fmt.Sprintf("Due in %d days: +%s", days, num(p.SoonBoost)))
	default:
		v := float64(max(0, p.DecayWindowDays-min(days, p.DecayWindowDays)))
		score += v
		expl = append(expl, fmt.Sprintf("Due in %d days: +%s", days, num(v)))
	}

	imp := float64(importance) * p.ImportanceWeight
	score += imp
	expl = append(expl, fmt.Sprintf("Importance %d: +%s", importance, num(imp)))

	if hours <= p.EffortFreeHours {
		score += p.QuickWinBonus
		expl = append(expl, fmt.Sprintf("Quick win (<=%dh): +%s", p.EffortFreeHours, num(p.QuickWinBonus)))
	} else {
		pen := max(0, float64(hours-p.EffortFreeHours)*p.EffortPenaltyPerHour)
		score -= pen
		expl = append(expl, fmt.Sprintf("High effort (%dh): -%.1f", hours, pen))
	}

	if dependents > 0 {
		add := float64(dependents) * p.DependencyBonus
		score += add
		expl = append(expl, fmt.Sprintf("Has %d dependent(s): +%s", dependents, num(add)))
	}

	if inCycle {
		score -= p.CyclePenalty
		expl = append(expl, fmt.Sprintf("In circular dependency: -%s", num(p.CyclePenalty)))
	}

	return score, strings.Join(expl, "; "), nil
}

// num formats a weight without trailing zeros: 120, 1.5, 48.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
