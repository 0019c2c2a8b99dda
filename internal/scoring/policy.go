// Package scoring ranks task lists by a priority score built from urgency,
// importance, effort and dependency structure, and explains every score.
package scoring

// Policy holds the weights of the scoring formula.
type Policy struct {
	OverdueBoost         float64 // urgency points for any overdue task
	SoonBoost            float64 // urgency points for tasks due within SoonWindowDays
	ImportanceWeight     float64 // points per importance unit
	QuickWinBonus        float64 // points for tasks at or below EffortFreeHours
	DependencyBonus      float64 // points per dependent task
	CyclePenalty         float64 // points removed for tasks on a dependency cycle
	EffortPenaltyPerHour float64 // points removed per hour above EffortFreeHours
	EffortFreeHours      int
	DecayWindowDays      int // urgency decays linearly to zero over this many days
	SoonWindowDays       int
}

// DefaultPolicy returns the production weights.
func DefaultPolicy() Policy {
	return Policy{
		OverdueBoost:         120,
		SoonBoost:            40,
		ImportanceWeight:     6,
		QuickWinBonus:        12,
		DependencyBonus:      15,
		CyclePenalty:         10,
		EffortPenaltyPerHour: 1.5,
		EffortFreeHours:      2,
		DecayWindowDays:      10,
		SoonWindowDays:       3,
	}
}

const (
	// DefaultImportance is used when a task has no importance.
	DefaultImportance = 5
	// DefaultEstimatedHours is used when a task has no estimate.
	DefaultEstimatedHours = 1
	// DefaultTopN is the number of suggestions returned by SuggestTop callers
	// that do not choose one.
	DefaultTopN = 3
)
