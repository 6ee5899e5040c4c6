package attribute

import (
	"context"
	_ "embed"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/visitor"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnAttributeStructure checks the cardinality of an attribute and of every
// attribute it overrides or inherits from.
func OnAttributeStructure(ctx context.Context, node entity.Node, res *result.Result) error {
	res.Merge(visitor.Walk(ctx, visitor.AttributeVisitor{}, node))
	return nil
}

// OnAttributeDataType summarizes the problems of an atomic data type on the
// attribute that uses it. A missing data type is reported by
// OnAttributeStructure.
func OnAttributeDataType(ctx context.Context, node entity.Node, res *result.Result) error {
	a, ok := node.(*entity.Attribute)
	if !ok {
		return nil
	}
	dt, ok := a.DataType.(*entity.AtomicDataType)
	if !ok || dt == nil {
		return nil
	}
	if n := visitor.Walk(ctx, visitor.AtomicTypeVisitor{}, dt).ErrorCount(); n > 0 {
		res.Add(result.Error, "data type of the attribute has an inconsistent value domain", a, dt).
			With("dataType", dt.ID()).
			With("errors", n)
	}
	return nil
}

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("OnAttributeStructure", OnAttributeStructure)
	r.RegisterHandler("OnAttributeDataType", OnAttributeDataType)
}

// Manifest returns the rule declarations of this module.
func (m *Module) Manifest() (string, []byte) {
	return "modules/attribute/manifest.hcl", manifest
}
