package entity

import "github.com/zclconf/go-cty/cty"

// Unbounded marks an attribute upper bound without a limit.
const Unbounded = -1

// Node is any entity participating in the rule-processed graph. The
// interface is sealed; only the types in this package implement it.
type Node interface {
	ID() string
	Variant() Variant
	node()
}

// DataType is implemented by the nodes that can type an attribute.
type DataType interface {
	Node
	dataType()
}

// Meta holds the fields every node carries.
type Meta struct {
	Key  string
	Name string
}

// ID returns the node's stable identifier.
func (m *Meta) ID() string { return m.Key }

func (*Meta) node() {}

// Attribute is a typed, bounded property of a type profile.
type Attribute struct {
	Meta
	DataType     DataType
	LowerBound   int
	UpperBound   int
	InheritsFrom *Attribute
	Override     *Attribute
}

func (*Attribute) Variant() Variant { return VariantAttribute }

// Unbounded reports whether the attribute has no upper limit.
func (a *Attribute) Unbounded() bool { return a.UpperBound == Unbounded }

// AttributeMapping maps the value of one attribute onto another.
type AttributeMapping struct {
	Meta
	Source *Attribute
	Target *Attribute
}

func (*AttributeMapping) Variant() Variant { return VariantAttributeMapping }

// AtomicDataType is a primitive type optionally restricted to a value set.
type AtomicDataType struct {
	Meta
	BaseType        cty.Type
	PermittedValues []cty.Value
	ForbiddenValues []cty.Value
	InheritsFrom    *AtomicDataType
}

func (*AtomicDataType) Variant() Variant { return VariantAtomicDataType }
func (*AtomicDataType) dataType()        {}

// TypeProfile is a structured type composed of attributes.
type TypeProfile struct {
	Meta
	ValidationPolicy ValidationPolicy
	InheritsFrom     []*TypeProfile
	Attributes       []*Attribute
}

func (*TypeProfile) Variant() Variant { return VariantTypeProfile }
func (*TypeProfile) dataType()        {}

// AttributeNames returns the names of the declared attributes in
// declaration order.
func (p *TypeProfile) AttributeNames() []string {
	names := make([]string, 0, len(p.Attributes))
	for _, a := range p.Attributes {
		if a != nil {
			names = append(names, a.Name)
		}
	}
	return names
}

// Operation is an executable behaviour made of ordered steps.
type Operation struct {
	Meta
	ExecutableOn *TechnologyInterface
	InheritsFrom *Operation
	Execution    []*OperationStep
}

func (*Operation) Variant() Variant { return VariantOperation }

// OperationStep is one step of an operation's execution.
type OperationStep struct {
	Meta
	Action    string
	Operation *Operation
	Invokes   *Operation
}

func (*OperationStep) Variant() Variant { return VariantOperationStep }

// TechnologyInterface describes where an operation can run.
type TechnologyInterface struct {
	Meta
	Protocol string
	Endpoint string
}

func (*TechnologyInterface) Variant() Variant { return VariantTechnologyInterface }

// DerivesFrom reports whether child is parent or inherits from it, directly
// or transitively. Inheritance cycles are tolerated.
func DerivesFrom(child, parent DataType) bool {
	if child == nil || parent == nil {
		return false
	}
	seen := make(map[DataType]struct{})
	queue := []DataType{child}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == parent {
			return true
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		switch t := cur.(type) {
		case *AtomicDataType:
			if t.InheritsFrom != nil {
				queue = append(queue, t.InheritsFrom)
			}
		case *TypeProfile:
			for _, p := range t.InheritsFrom {
				if p != nil {
					queue = append(queue, p)
				}
			}
		}
	}
	return false
}
