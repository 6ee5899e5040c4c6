package rule

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// Descriptor is the declarative part of a Rule Unit.
type Descriptor struct {
	Name          string
	Description   string
	AppliesTo     []entity.Variant
	Tasks         []Task
	DependsOn     []string
	ExecuteBefore []string
}

// Validate reports configuration errors in the descriptor.
func (d Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("rule unit name must not be empty"))
	}
	if len(d.AppliesTo) == 0 {
		errs = append(errs, fmt.Errorf("rule unit '%s' does not apply to any variant", d.Name))
	}
	for _, v := range d.AppliesTo {
		switch {
		case !v.Known():
			errs = append(errs, fmt.Errorf("rule unit '%s' targets unknown variant %s", d.Name, v))
		case v.Abstract():
			errs = append(errs, fmt.Errorf("rule unit '%s' targets abstract variant %s", d.Name, v))
		}
	}
	if len(d.Tasks) == 0 {
		errs = append(errs, fmt.Errorf("rule unit '%s' does not declare any task", d.Name))
	}
	for _, ref := range append(slices.Clone(d.DependsOn), d.ExecuteBefore...) {
		if ref == d.Name {
			errs = append(errs, fmt.Errorf("rule unit '%s' references itself", d.Name))
		}
	}
	return errors.Join(errs...)
}

// Targets reports whether the unit runs for the given task and variant.
func (d Descriptor) Targets(task Task, v entity.Variant) bool {
	return slices.Contains(d.Tasks, task) && slices.Contains(d.AppliesTo, v)
}

// Unit is a single check or enrichment. Process reads node, and anything
// reachable from it, and appends messages to res. It must not mutate the
// entity graph and must produce the same output for the same input.
type Unit interface {
	Descriptor() Descriptor
	Process(ctx context.Context, node entity.Node, res *result.Result) error
}

// ProcessFunc is the Go body of a Rule Unit.
type ProcessFunc func(ctx context.Context, node entity.Node, res *result.Result) error

type funcUnit struct {
	desc Descriptor
	fn   ProcessFunc
}

// New binds a descriptor to its Go implementation.
func New(desc Descriptor, fn ProcessFunc) Unit {
	return &funcUnit{desc: desc, fn: fn}
}

func (u *funcUnit) Descriptor() Descriptor {
	return u.desc
}

func (u *funcUnit) Process(ctx context.Context, node entity.Node, res *result.Result) error {
	if u.fn == nil {
		return fmt.Errorf("rule unit '%s' has no implementation", u.desc.Name)
	}
	return u.fn(ctx, node, res)
}
