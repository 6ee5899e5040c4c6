// Package visitor walks the entity graph with double dispatch and turns each
// visited node into a result.Result.
//
// The entity graph may contain reference cycles. A Traversal therefore keeps
// two pieces of state for the duration of one walk:
//
//   - onPath: the nodes currently being expanded. Re-entering one of them
//     means a cycle was closed; the walk returns a cycle Result instead of
//     recursing.
//   - cache: the nodes already fully processed. Shared sub-graphs are
//     evaluated once. The first Visit of a node hands out its Result; later
//     visits in the same walk return an empty Result, because the cached one
//     is already part of the tree being built and merging it again would
//     count its messages twice.
//
// The state lives on the Traversal, never on the Handler, so handlers are
// stateless and one handler value can serve any number of concurrent walks as
// long as each walk uses its own Traversal.
package visitor

import (
	"context"
	"fmt"

	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// Handler implements the variant-specific logic of a visitor, one method per
// concrete entity variant. Embed Base to inherit the default behaviour for
// the variants a visitor does not care about.
type Handler interface {
	VisitAttribute(t *Traversal, n *entity.Attribute, args ...any) *result.Result
	VisitAttributeMapping(t *Traversal, n *entity.AttributeMapping, args ...any) *result.Result
	VisitAtomicDataType(t *Traversal, n *entity.AtomicDataType, args ...any) *result.Result
	VisitTypeProfile(t *Traversal, n *entity.TypeProfile, args ...any) *result.Result
	VisitOperation(t *Traversal, n *entity.Operation, args ...any) *result.Result
	VisitOperationStep(t *Traversal, n *entity.OperationStep, args ...any) *result.Result
	VisitTechnologyInterface(t *Traversal, n *entity.TechnologyInterface, args ...any) *result.Result
}

// CycleFunc builds the Result returned when a cycle is closed at n.
type CycleFunc func(n entity.Node) *result.Result

// DefaultCycleResult reports one error tagged with the node that closed the cycle.
func DefaultCycleResult(n entity.Node) *result.Result {
	res := result.New()
	res.Add(result.Error, CycleDetected, n).With("node", n.ID())
	return res
}

// CycleDetected is the text of the default cycle message.
const CycleDetected = "cycle detected"

// Option configures a Traversal.
type Option func(*Traversal)

// WithCycleResult replaces the Result produced when a cycle is detected.
func WithCycleResult(fn CycleFunc) Option {
	return func(t *Traversal) {
		if fn != nil {
			t.cycle = fn
		}
	}
}

// Traversal is the state of a single walk. It is not safe for concurrent use.
type Traversal struct {
	ctx         context.Context
	handler     Handler
	cycle       CycleFunc
	onPath      map[entity.Node]struct{}
	cache       map[entity.Node]*result.Result
	diagnostics []string
}

// New prepares a walk driven by h.
func New(ctx context.Context, h Handler, opts ...Option) *Traversal {
	t := &Traversal{
		ctx:     ctx,
		handler: h,
		cycle:   DefaultCycleResult,
		onPath:  make(map[entity.Node]struct{}),
		cache:   make(map[entity.Node]*result.Result),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Walk visits n with a fresh Traversal.
func Walk(ctx context.Context, h Handler, n entity.Node, args ...any) *result.Result {
	return New(ctx, h).Visit(n, args...)
}

// Context returns the context the walk was started with.
func (t *Traversal) Context() context.Context {
	return t.ctx
}

// Visit returns the Result for n, dispatching to the handler at most once per
// node. A nil node, or a node this walk already processed, yields an empty
// Result. Use Cached to look up the Result of a processed node.
func (t *Traversal) Visit(n entity.Node, args ...any) *result.Result {
	if isNil(n) {
		return result.New()
	}
	if _, ok := t.cache[n]; ok {
		return result.New()
	}
	if _, ok := t.onPath[n]; ok {
		ctxlog.FromContext(t.ctx).Debug("Cycle detected during traversal.", "node", n.ID(), "variant", n.Variant().String())
		return t.cycle(n)
	}

	t.onPath[n] = struct{}{}
	res := t.dispatch(n, args)
	delete(t.onPath, n)

	if res == nil {
		res = result.New()
	}
	t.cache[n] = res
	return res
}

// Cached returns the Result produced for n earlier in this walk.
func (t *Traversal) Cached(n entity.Node) (*result.Result, bool) {
	if isNil(n) {
		return nil, false
	}
	res, ok := t.cache[n]
	return res, ok
}

// VisitEach visits every node in order and merges the Results into one.
func VisitEach[N entity.Node](t *Traversal, nodes []N, args ...any) *result.Result {
	res := result.New()
	for _, n := range nodes {
		res.Merge(t.Visit(n, args...))
	}
	return res
}

// Unsupported is the default outcome for a variant a handler does not
// support: an empty Result plus an internal diagnostic that is logged but
// never surfaced to the caller.
func (t *Traversal) Unsupported(n entity.Node) *result.Result {
	msg := fmt.Sprintf("%T does not handle %s '%s'", t.handler, n.Variant(), n.ID())
	t.diagnostics = append(t.diagnostics, msg)
	ctxlog.FromContext(t.ctx).Debug("Visitor does not support variant, returning empty result.", "handler", fmt.Sprintf("%T", t.handler), "variant", n.Variant().String(), "node", n.ID())
	return result.New()
}

// Diagnostics returns the internal diagnostics recorded so far.
func (t *Traversal) Diagnostics() []string {
	return append([]string(nil), t.diagnostics...)
}

func (t *Traversal) dispatch(n entity.Node, args []any) *result.Result {
	switch v := n.(type) {
	case *entity.Attribute:
		return t.handler.VisitAttribute(t, v, args...)
	case *entity.AttributeMapping:
		return t.handler.VisitAttributeMapping(t, v, args...)
	case *entity.AtomicDataType:
		return t.handler.VisitAtomicDataType(t, v, args...)
	case *entity.TypeProfile:
		return t.handler.VisitTypeProfile(t, v, args...)
	case *entity.Operation:
		return t.handler.VisitOperation(t, v, args...)
	case *entity.OperationStep:
		return t.handler.VisitOperationStep(t, v, args...)
	case *entity.TechnologyInterface:
		return t.handler.VisitTechnologyInterface(t, v, args...)
	}
	return t.Unsupported(n)
}

// isNil catches typed nil pointers hidden inside the Node interface.
func isNil(n entity.Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *entity.Attribute:
		return v == nil
	case *entity.AttributeMapping:
		return v == nil
	case *entity.AtomicDataType:
		return v == nil
	case *entity.TypeProfile:
		return v == nil
	case *entity.Operation:
		return v == nil
	case *entity.OperationStep:
		return v == nil
	case *entity.TechnologyInterface:
		return v == nil
	}
	return false
}
