package rulegraph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/dag"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
)

type groupKey struct {
	task    rule.Task
	variant entity.Variant
}

// Build orders the given units for every (task, variant) pair they target.
//
// For each pair a DAG is built over the units targeting it. A unit that
// depends on d gets the edge d -> unit; a unit that executes before o gets
// the edge unit -> o. References to units outside the pair are ignored for
// that pair. The first cycle found fails the whole build.
func Build(ctx context.Context, units []rule.Unit) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building rule graph.", "units", len(units))

	descs := make(map[string]rule.Descriptor, len(units))
	var errs []error
	for _, u := range units {
		d := u.Descriptor()
		if _, dup := descs[d.Name]; dup {
			errs = append(errs, &ConfigError{Unit: d.Name, Err: errors.New("declared more than once")})
			continue
		}
		if err := d.Validate(); err != nil {
			errs = append(errs, &ConfigError{Unit: d.Name, Err: err})
		}
		descs[d.Name] = d
	}
	for _, name := range sortedKeys(descs) {
		d := descs[name]
		for _, ref := range slices.Concat(d.DependsOn, d.ExecuteBefore) {
			if _, ok := descs[ref]; !ok {
				errs = append(errs, &ConfigError{Unit: name, Err: fmt.Errorf("references unknown rule unit '%s'", ref)})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	groups := make(map[groupKey][]string)
	for _, name := range sortedKeys(descs) {
		d := descs[name]
		for _, task := range d.Tasks {
			for _, v := range d.AppliesTo {
				k := groupKey{task: task, variant: v}
				if !slices.Contains(groups[k], name) {
					groups[k] = append(groups[k], name)
				}
			}
		}
	}

	g := newGraph()
	for _, k := range sortedGroupKeys(groups) {
		order, err := orderGroup(groups[k], descs)
		if err != nil {
			return nil, &ConfigError{Task: k.task, Variant: k.variant, Err: err}
		}
		logger.Debug("Ordered rule units.", "task", k.task, "variant", k.variant.String(), "order", order)
		g.set(k.task, k.variant, order)
	}

	logger.Info("Rule graph built.", "tasks", len(g.Tasks()), "units", len(descs))
	return g, nil
}

func orderGroup(members []string, descs map[string]rule.Descriptor) ([]string, error) {
	d := dag.New()
	for _, name := range members {
		d.AddNode(name)
	}
	for _, name := range members {
		desc := descs[name]
		for _, dep := range desc.DependsOn {
			if !d.Has(dep) {
				continue
			}
			if err := d.AddEdge(dep, name); err != nil {
				return nil, err
			}
		}
		for _, before := range desc.ExecuteBefore {
			if !d.Has(before) {
				continue
			}
			if err := d.AddEdge(name, before); err != nil {
				return nil, err
			}
		}
	}
	return d.TopologicalSort()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedGroupKeys(m map[groupKey][]string) []groupKey {
	keys := make([]groupKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		if a.task != b.task {
			if a.task < b.task {
				return -1
			}
			return 1
		}
		return int(a.variant) - int(b.variant)
	})
	return keys
}
