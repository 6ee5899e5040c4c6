// This file contains the translation of entity blocks into the entity graph.
// Blocks may reference each other across files and in any order, so the
// graph is built in two passes: every node is created first, then every
// reference is resolved by id.

package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
)

type entityBuilder struct {
	doc  *entity.Document
	errs []error

	attributes map[string]*entity.Attribute
	atomics    map[string]*entity.AtomicDataType
	profiles   map[string]*entity.TypeProfile
	operations map[string]*entity.Operation
	steps      map[string]*entity.OperationStep
	interfaces map[string]*entity.TechnologyInterface
}

func newEntityBuilder() *entityBuilder {
	return &entityBuilder{
		doc:        entity.NewDocument(),
		attributes: make(map[string]*entity.Attribute),
		atomics:    make(map[string]*entity.AtomicDataType),
		profiles:   make(map[string]*entity.TypeProfile),
		operations: make(map[string]*entity.Operation),
		steps:      make(map[string]*entity.OperationStep),
		interfaces: make(map[string]*entity.TechnologyInterface),
	}
}

func (b *entityBuilder) fail(r hcl.Range, format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%s: %s", position(r), fmt.Sprintf(format, args...)))
}

func (b *entityBuilder) add(n entity.Node, r hcl.Range) bool {
	if err := b.doc.Add(n); err != nil {
		b.fail(r, "%v", err)
		return false
	}
	return true
}

// buildEntities translates the entity blocks of all roots into one document.
func (l *Loader) buildEntities(ctx context.Context, roots []*fileRoot) (*entity.Document, error) {
	logger := ctxlog.FromContext(ctx)
	b := newEntityBuilder()

	// Pass 1: create every node.
	for _, root := range roots {
		for _, blk := range root.Interfaces {
			n := &entity.TechnologyInterface{
				Meta:     entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)},
				Protocol: blk.Protocol,
				Endpoint: blk.Endpoint,
			}
			if b.add(n, blk.DeclRange) {
				b.interfaces[blk.ID] = n
			}
		}
		for _, blk := range root.Atomics {
			n, err := l.newAtomicType(ctx, blk)
			if err != nil {
				b.fail(blk.DeclRange, "atomic_data_type '%s': %v", blk.ID, err)
				continue
			}
			if b.add(n, blk.DeclRange) {
				b.atomics[blk.ID] = n
			}
		}
		for _, blk := range root.Profiles {
			policy, err := entity.ParseValidationPolicy(blk.ValidationPolicy)
			if err != nil {
				b.fail(blk.DeclRange, "type_profile '%s': %v", blk.ID, err)
				continue
			}
			n := &entity.TypeProfile{
				Meta:             entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)},
				ValidationPolicy: policy,
			}
			if b.add(n, blk.DeclRange) {
				b.profiles[blk.ID] = n
			}
		}
		for _, blk := range root.Attributes {
			upper, err := upperBoundFromExpr(ctx, blk.UpperBound)
			if err != nil {
				b.fail(blk.DeclRange, "attribute '%s': %v", blk.ID, err)
				continue
			}
			n := &entity.Attribute{
				Meta:       entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)},
				LowerBound: blk.LowerBound,
				UpperBound: upper,
			}
			if b.add(n, blk.DeclRange) {
				b.attributes[blk.ID] = n
			}
		}
		for _, blk := range root.Operations {
			n := &entity.Operation{Meta: entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)}}
			if b.add(n, blk.DeclRange) {
				b.operations[blk.ID] = n
			}
		}
		for _, blk := range root.Steps {
			n := &entity.OperationStep{
				Meta:   entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)},
				Action: blk.Action,
			}
			if b.add(n, blk.DeclRange) {
				b.steps[blk.ID] = n
			}
		}
		for _, blk := range root.Mappings {
			n := &entity.AttributeMapping{Meta: entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)}}
			b.add(n, blk.DeclRange)
		}
	}

	// Pass 2: resolve references.
	for _, root := range roots {
		for _, blk := range root.Atomics {
			n, ok := b.atomics[blk.ID]
			if !ok || blk.InheritsFrom == "" {
				continue
			}
			if parent, ok := b.atomics[blk.InheritsFrom]; ok {
				n.InheritsFrom = parent
			} else {
				b.fail(blk.DeclRange, "atomic_data_type '%s' inherits from unknown atomic_data_type '%s'", blk.ID, blk.InheritsFrom)
			}
		}
		for _, blk := range root.Profiles {
			n, ok := b.profiles[blk.ID]
			if !ok {
				continue
			}
			for _, ref := range blk.InheritsFrom {
				if parent, ok := b.profiles[ref]; ok {
					n.InheritsFrom = append(n.InheritsFrom, parent)
				} else {
					b.fail(blk.DeclRange, "type_profile '%s' inherits from unknown type_profile '%s'", blk.ID, ref)
				}
			}
			for _, ref := range blk.Attributes {
				if a, ok := b.attributes[ref]; ok {
					n.Attributes = append(n.Attributes, a)
				} else {
					b.fail(blk.DeclRange, "type_profile '%s' declares unknown attribute '%s'", blk.ID, ref)
				}
			}
		}
		for _, blk := range root.Attributes {
			b.resolveAttribute(blk)
		}
		for _, blk := range root.Mappings {
			b.resolveMapping(blk)
		}
		for _, blk := range root.Operations {
			b.resolveOperation(blk)
		}
		for _, blk := range root.Steps {
			b.resolveStep(blk)
		}
	}
	b.assignStepOwners()

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	logger.Debug("Entity graph built.", "entities", b.doc.Len())
	return b.doc, nil
}

func (l *Loader) newAtomicType(ctx context.Context, blk *atomicTypeBlock) (*entity.AtomicDataType, error) {
	base, err := baseTypeFromExpr(ctx, blk.BaseType)
	if err != nil {
		return nil, err
	}
	permitted, err := valuesFromExpr(ctx, blk.PermittedValues, "permitted_values")
	if err != nil {
		return nil, err
	}
	forbidden, err := valuesFromExpr(ctx, blk.ForbiddenValues, "forbidden_values")
	if err != nil {
		return nil, err
	}
	return &entity.AtomicDataType{
		Meta:            entity.Meta{Key: blk.ID, Name: nameOr(blk.Name, blk.ID)},
		BaseType:        base,
		PermittedValues: permitted,
		ForbiddenValues: forbidden,
	}, nil
}

func (b *entityBuilder) dataType(id string) (entity.DataType, bool) {
	if d, ok := b.atomics[id]; ok {
		return d, true
	}
	if p, ok := b.profiles[id]; ok {
		return p, true
	}
	return nil, false
}

func (b *entityBuilder) resolveAttribute(blk *attributeBlock) {
	n, ok := b.attributes[blk.ID]
	if !ok {
		return
	}
	if blk.DataType != "" {
		if dt, ok := b.dataType(blk.DataType); ok {
			n.DataType = dt
		} else {
			b.fail(blk.DeclRange, "attribute '%s' has unknown data type '%s'", blk.ID, blk.DataType)
		}
	}
	if blk.InheritsFrom != "" {
		if parent, ok := b.attributes[blk.InheritsFrom]; ok {
			n.InheritsFrom = parent
		} else {
			b.fail(blk.DeclRange, "attribute '%s' inherits from unknown attribute '%s'", blk.ID, blk.InheritsFrom)
		}
	}
	if blk.Override != "" {
		if o, ok := b.attributes[blk.Override]; ok {
			n.Override = o
		} else {
			b.fail(blk.DeclRange, "attribute '%s' overrides unknown attribute '%s'", blk.ID, blk.Override)
		}
	}
}

func (b *entityBuilder) resolveMapping(blk *mappingBlock) {
	node, ok := b.doc.Get(blk.ID)
	if !ok {
		return
	}
	n, ok := node.(*entity.AttributeMapping)
	if !ok {
		return
	}
	if src, ok := b.attributes[blk.Source]; ok {
		n.Source = src
	} else {
		b.fail(blk.DeclRange, "attribute_mapping '%s' has unknown source attribute '%s'", blk.ID, blk.Source)
	}
	if tgt, ok := b.attributes[blk.Target]; ok {
		n.Target = tgt
	} else {
		b.fail(blk.DeclRange, "attribute_mapping '%s' has unknown target attribute '%s'", blk.ID, blk.Target)
	}
}

func (b *entityBuilder) resolveOperation(blk *operationBlock) {
	n, ok := b.operations[blk.ID]
	if !ok {
		return
	}
	if blk.ExecutableOn != "" {
		if ti, ok := b.interfaces[blk.ExecutableOn]; ok {
			n.ExecutableOn = ti
		} else {
			b.fail(blk.DeclRange, "operation '%s' is executable on unknown technology_interface '%s'", blk.ID, blk.ExecutableOn)
		}
	}
	if blk.InheritsFrom != "" {
		if parent, ok := b.operations[blk.InheritsFrom]; ok {
			n.InheritsFrom = parent
		} else {
			b.fail(blk.DeclRange, "operation '%s' inherits from unknown operation '%s'", blk.ID, blk.InheritsFrom)
		}
	}
	for _, ref := range blk.Execution {
		if s, ok := b.steps[ref]; ok {
			n.Execution = append(n.Execution, s)
		} else {
			b.fail(blk.DeclRange, "operation '%s' executes unknown operation_step '%s'", blk.ID, ref)
		}
	}
}

func (b *entityBuilder) resolveStep(blk *operationStepBlock) {
	n, ok := b.steps[blk.ID]
	if !ok {
		return
	}
	if blk.Operation != "" {
		if o, ok := b.operations[blk.Operation]; ok {
			n.Operation = o
		} else {
			b.fail(blk.DeclRange, "operation_step '%s' belongs to unknown operation '%s'", blk.ID, blk.Operation)
		}
	}
	if blk.Invokes != "" {
		if o, ok := b.operations[blk.Invokes]; ok {
			n.Invokes = o
		} else {
			b.fail(blk.DeclRange, "operation_step '%s' invokes unknown operation '%s'", blk.ID, blk.Invokes)
		}
	}
}

// assignStepOwners gives steps without an explicit operation the first
// operation, by id, that lists them in its execution.
func (b *entityBuilder) assignStepOwners() {
	ids := make([]string, 0, len(b.operations))
	for id := range b.operations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		op := b.operations[id]
		for _, s := range op.Execution {
			if s.Operation == nil {
				s.Operation = op
			}
		}
	}
}
