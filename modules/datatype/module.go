package datatype

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

// OnAtomicTypeValues validates the value sets of an atomic data type.
func OnAtomicTypeValues(ctx context.Context, node entity.Node, res *result.Result) error {
	res.Merge(visitor.Walk(ctx, visitor.AtomicTypeVisitor{}, node))
	return nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("OnAtomicTypeValues", OnAtomicTypeValues)
}

// Manifest returns the rule declarations of this module.
func (m *Module) Manifest() (string, []byte) {
	return "modules/datatype/manifest.hcl", manifest
}
