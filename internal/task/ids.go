package task

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownTask is returned when depends_on names an id no task carries.
var ErrUnknownTask = errors.New("unknown task id")

// ErrDuplicateID is returned when two tasks share the same id.
var ErrDuplicateID = errors.New("duplicate task id")

// ResolveDependsOn maps each task's DependsOn ids to positions in tasks and
// returns a copy of the list whose Dependencies include those positions.
// Positions already listed are not repeated. The input is not modified.
func ResolveDependsOn(tasks []Task) ([]Task, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			continue
		}
		if prev, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateID, t.ID, prev, i)
		}
		index[t.ID] = i
	}

	out := make([]Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		for _, id := range t.DependsOn {
			pos, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("task %d (%s) depends on %q: %w", i, t.DisplayTitle(), id, ErrUnknownTask)
			}
			if !slices.Contains(c.Dependencies, pos) {
				c.Dependencies = append(c.Dependencies, pos)
			}
		}
		out[i] = c
	}
	return out, nil
}
