package typeprofile

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

// OnTypeProfileAttributes walks the declared attributes of a profile with a
// single traversal, so an attribute that is both declared and overridden is
// checked and reported once.
func OnTypeProfileAttributes(ctx context.Context, node entity.Node, res *result.Result) error {
	p, ok := node.(*entity.TypeProfile)
	if !ok {
		return nil
	}
	t := visitor.New(ctx, visitor.AttributeVisitor{})
	for _, a := range p.Attributes {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Merge(t.Visit(a))
	}
	return nil
}

// OnTypeProfilePolicy applies the parents' validation policies.
func OnTypeProfilePolicy(ctx context.Context, node entity.Node, res *result.Result) error {
	res.Merge(visitor.Walk(ctx, visitor.TypeProfileVisitor{}, node))
	return nil
}

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("OnTypeProfileAttributes", OnTypeProfileAttributes)
	r.RegisterHandler("OnTypeProfilePolicy", OnTypeProfilePolicy)
}

// Manifest returns the rule declarations of this module.
func (m *Module) Manifest() (string, []byte) {
	return "modules/typeprofile/manifest.hcl", manifest
}
