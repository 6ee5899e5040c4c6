package dag

import (
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle. To is the node that was already
// being expanded when it was reached again from From.
type CycleError struct {
	From string
	To   string
	// Path lists the nodes of the cycle, starting and ending at To.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected between '%s' and '%s': %s", e.From, e.To, strings.Join(e.Path, " -> "))
}

// TopologicalSort returns every node ID so that each node comes after all of
// its dependencies. Ties are broken by ID, so the same graph always yields
// the same order.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search over the dependency edges with three
	// states: unvisited (absent), in progress and done. Post-order emits
	// dependencies first.
	const (
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		switch state[n.id] {
		case done:
			return nil
		case inProgress:
			return cycleFrom(stack, n.id)
		}

		state[n.id] = inProgress
		stack = append(stack, n.id)
		for _, depID := range sortedIDs(n.deps) {
			if err := visit(n.deps[depID]); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[n.id] = done
		order = append(order, n.id)
		return nil
	}

	for _, id := range sortedIDs(g.nodes) {
		if err := visit(g.nodes[id]); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cycleFrom builds the error for reaching id again while stack is being
// expanded. Edges on the stack point from a node to one of its dependencies,
// so the path is reversed to read in dependency order.
func cycleFrom(stack []string, id string) *CycleError {
	start := 0
	for i, s := range stack {
		if s == id {
			start = i
			break
		}
	}
	loop := stack[start:]
	path := make([]string, 0, len(loop)+1)
	path = append(path, id)
	for i := len(loop) - 1; i >= 0; i-- {
		path = append(path, loop[i])
	}
	return &CycleError{From: stack[len(stack)-1], To: id, Path: path}
}
