package mapping

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

// OnAttributeMapping checks that a mapping connects compatible attributes.
// A mapping without both ends panics inside the visitor; the scheduler
// reports it as a failed unit.
func OnAttributeMapping(ctx context.Context, node entity.Node, res *result.Result) error {
	res.Merge(visitor.Walk(ctx, visitor.MappingVisitor{}, node))
	return nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("OnAttributeMapping", OnAttributeMapping)
}

// Manifest returns the rule declarations of this module.
func (m *Module) Manifest() (string, []byte) {
	return "modules/mapping/manifest.hcl", manifest
}
