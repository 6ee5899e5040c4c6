package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/rule"
)

// Units binds every rule definition to its handler. Call ValidateRegistry
// first; Units only reports the first problem per definition.
func (r *Registry) Units() ([]rule.Unit, error) {
	names := make([]string, 0, len(r.DefinitionRegistry))
	for name := range r.DefinitionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)

	units := make([]rule.Unit, 0, len(names))
	var errs []error
	for _, name := range names {
		def := r.DefinitionRegistry[name]
		fn, ok := r.HandlerRegistry[def.Handler]
		if !ok {
			errs = append(errs, fmt.Errorf("rule '%s': handler '%s' is not registered", name, def.Handler))
			continue
		}
		desc, err := descriptor(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, rule.New(desc, fn))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return units, nil
}

// descriptor resolves the names in a definition.
func descriptor(def *config.RuleDefinition) (rule.Descriptor, error) {
	d := rule.Descriptor{
		Name:          def.Name,
		Description:   def.Description,
		DependsOn:     slices.Clone(def.DependsOn),
		ExecuteBefore: slices.Clone(def.ExecuteBefore),
	}
	for _, name := range def.AppliesTo {
		v, err := entity.ParseVariant(name)
		if err != nil {
			return rule.Descriptor{}, fmt.Errorf("rule '%s': %w", def.Name, err)
		}
		d.AppliesTo = append(d.AppliesTo, v)
	}
	for _, name := range def.Tasks {
		t, err := rule.ParseTask(name)
		if err != nil {
			return rule.Descriptor{}, fmt.Errorf("rule '%s': %w", def.Name, err)
		}
		d.Tasks = append(d.Tasks, t)
	}
	return d, nil
}
