package rulegraph

import (
	"slices"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
)

// Graph maps a task and a variant to the ordered names of the units to run.
// A Graph is immutable once built and safe for concurrent use.
type Graph struct {
	orders map[rule.Task]map[entity.Variant][]string
}

func newGraph() *Graph {
	return &Graph{orders: make(map[rule.Task]map[entity.Variant][]string)}
}

func (g *Graph) set(task rule.Task, v entity.Variant, order []string) {
	byVariant, ok := g.orders[task]
	if !ok {
		byVariant = make(map[entity.Variant][]string)
		g.orders[task] = byVariant
	}
	byVariant[v] = order
}

// Order returns the unit names for the pair, dependencies first. The slice
// is a copy. An unknown pair yields nil.
func (g *Graph) Order(task rule.Task, v entity.Variant) []string {
	return slices.Clone(g.orders[task][v])
}

// Tasks returns the tasks with at least one ordering, sorted.
func (g *Graph) Tasks() []rule.Task {
	tasks := make([]rule.Task, 0, len(g.orders))
	for t := range g.orders {
		tasks = append(tasks, t)
	}
	slices.Sort(tasks)
	return tasks
}

// Variants returns the variants that have an ordering for task.
func (g *Graph) Variants(task rule.Task) []entity.Variant {
	vs := make([]entity.Variant, 0, len(g.orders[task]))
	for v := range g.orders[task] {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}

// UnitNames returns every unit referenced by any ordering, sorted.
func (g *Graph) UnitNames() []string {
	seen := make(map[string]struct{})
	for _, byVariant := range g.orders {
		for _, order := range byVariant {
			for _, name := range order {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Equal reports whether both graphs hold the same orderings.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.orders) != len(other.orders) {
		return false
	}
	for task, byVariant := range g.orders {
		otherByVariant, ok := other.orders[task]
		if !ok || len(byVariant) != len(otherByVariant) {
			return false
		}
		for v, order := range byVariant {
			otherOrder, ok := otherByVariant[v]
			if !ok || !slices.Equal(order, otherOrder) {
				return false
			}
		}
	}
	return true
}
