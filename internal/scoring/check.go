package scoring

import (
	"fmt"
	"time"

	"github.com/ppiankov/taskrank/internal/task"
)

// Rule identifiers reported by Check.
const (
	RuleNonNumeric  = "non-numeric-field"
	RuleCycle       = "dependency-cycle"
	RuleDanglingDep = "dangling-dependency"
	RuleBadDueDate  = "unparseable-due-date"
)

// Issue is a problem found in a task list. Only RuleNonNumeric prevents
// analysis; the others change how a task is scored.
type Issue struct {
	Rule     string `json:"rule"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Blocking reports whether the issue makes Analyze fail.
func (i Issue) Blocking() bool {
	return i.Rule == RuleNonNumeric
}

// Check inspects tasks without scoring them. Issues are ordered by
// position, then rule.
func Check(tasks []task.Task, loc *time.Location) []Issue {
	cycles := task.DetectCycles(tasks)

	var issues []Issue
	for i, t := range tasks {
		add := func(rule, format string, args ...any) {
			issues = append(issues, Issue{
				Rule:     rule,
				Position: i,
				Title:    t.DisplayTitle(),
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if _, err := t.Importance.IntOr(DefaultImportance); err != nil {
			add(RuleNonNumeric, "importance %q is not a number", t.Importance.String())
		}
		if _, err := t.EstimatedHours.IntOr(DefaultEstimatedHours); err != nil {
			add(RuleNonNumeric, "estimated_hours %q is not a number", t.EstimatedHours.String())
		}
		if cycles.Has(i) {
			add(RuleCycle, "task is part of a circular dependency")
		}
		for _, d := range t.Dependencies {
			if d < 0 || d >= len(tasks) {
				add(RuleDanglingDep, "dependency %d is outside the task list and is ignored", d)
			}
		}
		if t.DueDate != "" {
			if _, err := ParseDate(t.DueDate, loc); err != nil {
				add(RuleBadDueDate, "due date %q cannot be parsed; treated as no due date", t.DueDate)
			}
		}
	}
	return issues
}
