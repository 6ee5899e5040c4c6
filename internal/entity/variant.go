package entity

import (
	"fmt"
	"strings"
)

// Variant identifies the concrete kind of an entity node. The set is closed:
// every Node implementation in this package reports exactly one Variant.
type Variant int

const (
	// VariantUnknown is the zero value and never describes a real node.
	VariantUnknown Variant = iota
	VariantAttribute
	VariantAttributeMapping
	VariantAtomicDataType
	VariantTypeProfile
	VariantOperation
	VariantOperationStep
	VariantTechnologyInterface
	// VariantDataType is abstract: AtomicDataType and TypeProfile are data
	// types, but no node is ever a plain DataType.
	VariantDataType
)

var variantNames = map[Variant]string{
	VariantAttribute:           "Attribute",
	VariantAttributeMapping:    "AttributeMapping",
	VariantAtomicDataType:      "AtomicDataType",
	VariantTypeProfile:         "TypeProfile",
	VariantOperation:           "Operation",
	VariantOperationStep:       "OperationStep",
	VariantTechnologyInterface: "TechnologyInterface",
	VariantDataType:            "DataType",
}

// String returns the canonical name of the variant.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Abstract reports whether the variant cannot be instantiated.
func (v Variant) Abstract() bool {
	return v == VariantDataType
}

// Known reports whether v is a member of the closed variant set.
func (v Variant) Known() bool {
	_, ok := variantNames[v]
	return ok
}

// Variants returns all concrete variants in declaration order.
func Variants() []Variant {
	return []Variant{
		VariantAttribute,
		VariantAttributeMapping,
		VariantAtomicDataType,
		VariantTypeProfile,
		VariantOperation,
		VariantOperationStep,
		VariantTechnologyInterface,
	}
}

// ParseVariant resolves a variant by name. Matching is case-insensitive and
// ignores underscores, so "type_profile" and "TypeProfile" are equivalent.
func ParseVariant(s string) (Variant, error) {
	needle := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for v, name := range variantNames {
		if strings.ToLower(name) == needle {
			return v, nil
		}
	}
	return VariantUnknown, fmt.Errorf("unknown entity variant %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if !v.Known() {
		return nil, fmt.Errorf("cannot marshal unknown variant %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
