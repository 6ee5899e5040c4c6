package scheduler

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
	"github.com/vk/rulegridgo/internal/rulegraph"
)

type planKey struct {
	task    rule.Task
	variant entity.Variant
}

// step is one scheduled unit. deps holds indices of earlier steps.
type step struct {
	name string
	unit rule.Unit
	deps []int
}

type plan []step

// buildPlans resolves every ordering of g against the unit implementations.
// The graph is unusable when it names a unit without an implementation, lists
// a unit under a task or variant the unit does not target, puts a unit before
// one of its dependencies, or leaves out a registered unit.
func buildPlans(g *rulegraph.Graph, units map[string]rule.Unit) (map[planKey]plan, error) {
	plans := make(map[planKey]plan)
	var errs []error

	for _, task := range g.Tasks() {
		for _, v := range g.Variants(task) {
			order := g.Order(task, v)
			position := make(map[string]int, len(order))
			for i, name := range order {
				position[name] = i
			}

			p := make(plan, 0, len(order))
			for i, name := range order {
				u, ok := units[name]
				if !ok {
					errs = append(errs, fmt.Errorf("rule graph for task %s and variant %s references rule unit '%s' which is not registered", task, v, name))
					continue
				}
				if !u.Descriptor().Targets(task, v) {
					errs = append(errs, fmt.Errorf("rule graph for task %s and variant %s lists rule unit '%s' which does not target it", task, v, name))
					continue
				}
				deps, err := dependencies(u.Descriptor(), i, order, position, units)
				if err != nil {
					errs = append(errs, fmt.Errorf("rule graph for task %s and variant %s: %w", task, v, err))
					continue
				}
				p = append(p, step{name: name, unit: u, deps: deps})
			}
			plans[planKey{task: task, variant: v}] = p
		}
	}
	errs = append(errs, missing(g, units)...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return plans, nil
}

// dependencies returns the sorted positions of the units that must finish
// before order[self] starts: the units it depends on and the units that
// declare they execute before it, restricted to the units in order.
func dependencies(d rule.Descriptor, self int, order []string, position map[string]int, units map[string]rule.Unit) ([]int, error) {
	var deps []int
	for _, name := range d.DependsOn {
		if i, ok := position[name]; ok {
			deps = append(deps, i)
		}
	}
	for i, name := range order {
		other, ok := units[name]
		if !ok || i == self {
			continue
		}
		if slices.Contains(other.Descriptor().ExecuteBefore, d.Name) {
			deps = append(deps, i)
		}
	}

	slices.Sort(deps)
	deps = slices.Compact(deps)
	for _, i := range deps {
		if i >= self {
			return nil, fmt.Errorf("rule unit '%s' is ordered before its dependency '%s'", d.Name, order[i])
		}
	}
	return deps, nil
}

// missing reports every registered unit that targets a (task, variant) pair
// whose ordering in g does not list it. A graph decoded from an artifact
// written before the unit was added is the usual cause.
func missing(g *rulegraph.Graph, units map[string]rule.Unit) []error {
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		d := units[name].Descriptor()
		for _, task := range d.Tasks {
			for _, v := range d.AppliesTo {
				if !slices.Contains(g.Order(task, v), name) {
					errs = append(errs, fmt.Errorf("rule graph for task %s and variant %s is missing rule unit '%s'", task, v, name))
				}
			}
		}
	}
	return errs
}
