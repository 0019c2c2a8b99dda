package task

import "sort"

// Graph is the dependency graph of one task list. Node i is the task at
// position i; its edges point to the positions it depends on. Positions
// outside the list are kept in the adjacency but never traversed.
type Graph struct {
	adj        [][]int
	dependents []int // number of distinct other tasks depending on each position
}

// BuildGraph creates a dependency graph from a task list.
func BuildGraph(tasks []Task) *Graph {
	n := len(tasks)
	g := &Graph{
		adj:        make([][]int, n),
		dependents: make([]int, n),
	}

	for i, t := range tasks {
		g.adj[i] = t.Dependencies

		seen := make(map[int]struct{}, len(t.Dependencies))
		for _, d := range t.Dependencies {
			if d < 0 || d >= n || d == i {
				continue
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			g.dependents[d]++
		}
	}

	return g
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.adj)
}

// Deps returns the raw dependency positions of the task at i, including
// any that are out of range.
func (g *Graph) Deps(i int) []int {
	if i < 0 || i >= len(g.adj) {
		return nil
	}
	return g.adj[i]
}

// Dependents returns how many other tasks list position i as a dependency.
func (g *Graph) Dependents(i int) int {
	if i < 0 || i >= len(g.dependents) {
		return 0
	}
	return g.dependents[i]
}

// CountDependents returns how many tasks other than the one at idx list idx
// among their dependencies. Each task counts once.
func CountDependents(tasks []Task, idx int) int {
	count := 0
	for j, t := range tasks {
		if j == idx {
			continue
		}
		for _, d := range t.Dependencies {
			if d == idx {
				count++
				break
			}
		}
	}
	return count
}

// CycleSet holds the positions of tasks that lie on a dependency cycle.
type CycleSet map[int]struct{}

// Has reports whether position i is on a cycle.
func (c CycleSet) Has(i int) bool {
	_, ok := c[i]
	return ok
}

// Positions returns the members in ascending order.
func (c CycleSet) Positions() []int {
	out := make([]int, 0, len(c))
	for i := range c {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// DetectCycles returns the positions of every task on a dependency cycle.
func DetectCycles(tasks []Task) CycleSet {
	return BuildGraph(tasks).Cycles()
}

type mark uint8

const (
	unvisited mark = iota
	inProgress
	finished
)

// walker is the traversal state for one cycle search.
type walker struct {
	adj    [][]int
	marks  []mark
	path   []int
	cycles CycleSet
}

// Cycles runs a depth-first search from every unvisited node and collects
// every node that lies on a cycle. Reaching a node that is still in
// progress closes a cycle made of that node and everything after it on the
// current path. Finished nodes are never re-explored, so the search is
// O(V+E).
func (g *Graph) Cycles() CycleSet {
	w := &walker{
		adj:    g.adj,
		marks:  make([]mark, len(g.adj)),
		cycles: make(CycleSet),
	}
	for i := range g.adj {
		if w.marks[i] == unvisited {
			w.visit(i)
		}
	}
	return w.cycles
}

func (w *walker) visit(u int) {
	switch w.marks[u] {
	case inProgress:
		for i := len(w.path) - 1; i >= 0; i-- {
			if w.path[i] != u {
				continue
			}
			for _, p := range w.path[i:] {
				w.cycles[p] = struct{}{}
			}
			break
		}
		return
	case finished:
		return
	}

	w.marks[u] = inProgress
	w.path = append(w.path, u)
	for _, v := range w.adj[u] {
		if v >= 0 && v < len(w.adj) {
			w.visit(v)
		}
	}
	w.path = w.path[:len(w.path)-1]
	w.marks[u] = finished
}
