package visitor

import (
	"fmt"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// Base answers every variant with Traversal.Unsupported.
type Base struct{}

func (Base) VisitAttribute(t *Traversal, n *entity.Attribute, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitAttributeMapping(t *Traversal, n *entity.AttributeMapping, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitAtomicDataType(t *Traversal, n *entity.AtomicDataType, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitTypeProfile(t *Traversal, n *entity.TypeProfile, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitOperation(t *Traversal, n *entity.Operation, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitOperationStep(t *Traversal, n *entity.OperationStep, _ ...any) *result.Result {
	return t.Unsupported(n)
}

func (Base) VisitTechnologyInterface(t *Traversal, n *entity.TechnologyInterface, _ ...any) *result.Result {
	return t.Unsupported(n)
}

// ContractViolation is the panic value raised when a node lacks a reference
// the code cannot do without. It is a programming error, not a business rule
// violation, and is expected to be recovered by whoever runs the rule unit.
type ContractViolation struct {
	Node   entity.Node
	Reason string
}

func (c *ContractViolation) Error() string {
	if c.Node == nil {
		return "contract violation: " + c.Reason
	}
	return fmt.Sprintf("contract violation on %s '%s': %s", c.Node.Variant(), c.Node.ID(), c.Reason)
}

// Require panics with a ContractViolation when ok is false.
func Require(ok bool, n entity.Node, format string, args ...any) {
	if !ok {
		panic(&ContractViolation{Node: n, Reason: fmt.Sprintf(format, args...)})
	}
}
