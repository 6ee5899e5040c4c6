package operation

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

// OnOperationStructure checks an operation or step and everything it
// executes or invokes.
func OnOperationStructure(ctx context.Context, node entity.Node, res *result.Result) error {
	res.Merge(visitor.Walk(ctx, visitor.OperationVisitor{}, node))
	return nil
}

// OnTechnologyInterface checks a technology interface in isolation.
func OnTechnologyInterface(ctx context.Context, node entity.Node, res *result.Result) error {
	if _, ok := node.(*entity.TechnologyInterface); !ok {
		return nil
	}
	res.Merge(visitor.Walk(ctx, visitor.OperationVisitor{}, node))
	return nil
}

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("OnOperationStructure", OnOperationStructure)
	r.RegisterHandler("OnTechnologyInterface", OnTechnologyInterface)
}

// Manifest returns the rule declarations of this module.
func (m *Module) Manifest() (string, []byte) {
	return "modules/operation/manifest.hcl", manifest
}
