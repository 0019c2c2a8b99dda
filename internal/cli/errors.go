package cli

import "fmt"

// CycleError reports that --fail-on-cycle found circular dependencies.
// Callers should map this to exit code 3.
type CycleError struct {
	Count int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%d task(s) in circular dependencies", e.Count)
}

// InvalidTasksError reports blocking validation issues.
// Callers should map this to exit code 2.
type InvalidTasksError struct {
	Count int
}

func (e *InvalidTasksError) Error() string {
	return fmt.Sprintf("%d blocking issue(s) in task list", e.Count)
}
