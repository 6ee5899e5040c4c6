package visitor

import (
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// AtomicTypeVisitor checks the permitted and forbidden value sets of atomic
// data types, both on their own and against the parent type.
type AtomicTypeVisitor struct {
	Base
}

func (AtomicTypeVisitor) VisitAtomicDataType(t *Traversal, d *entity.AtomicDataType, _ ...any) *result.Result {
	res := result.New()

	if d.BaseType == cty.NilType {
		res.Errorf(d, "atomic data type '%s' must declare a base type", d.Name)
	} else {
		checkConformance(res, d, "permitted", d.PermittedValues)
		checkConformance(res, d, "forbidden", d.ForbiddenValues)
	}

	for _, v := range d.PermittedValues {
		if containsValue(d.ForbiddenValues, v, d.BaseType) {
			res.Errorf(d, "value %s is both permitted and forbidden", describeValue(v)).
				With("value", describeValue(v))
		}
	}

	if p := d.InheritsFrom; p != nil && p != d {
		checkAgainstParent(res, d, p)
	}

	res.Merge(t.Visit(d.InheritsFrom))
	return res
}

func checkConformance(res *result.Result, d *entity.AtomicDataType, kind string, values []cty.Value) {
	for _, v := range values {
		if v.IsNull() || !v.IsKnown() {
			res.Errorf(d, "%s value must be a known, non-null value", kind)
			continue
		}
		if _, err := convert.Convert(v, d.BaseType); err != nil {
			res.Errorf(d, "%s value %s does not conform to base type %s", kind, describeValue(v), d.BaseType.FriendlyName()).
				With("value", describeValue(v)).
				With("baseType", d.BaseType.FriendlyName())
		}
	}
}

func checkAgainstParent(res *result.Result, d, p *entity.AtomicDataType) {
	if d.BaseType != cty.NilType && p.BaseType != cty.NilType && !d.BaseType.Equals(p.BaseType) {
		res.Add(result.Error, "base type differs from the base type of the parent", d, p).
			With("baseType", d.BaseType.FriendlyName()).
			With("parentBaseType", p.BaseType.FriendlyName())
	}

	if len(p.PermittedValues) > 0 {
		var outside []string
		for _, v := range d.PermittedValues {
			if !containsValue(p.PermittedValues, v, p.BaseType) {
				outside = append(outside, describeValue(v))
			}
		}
		if len(outside) > 0 {
			res.Add(result.Error, "permitted values are not permitted by the parent", d, p).
				With("parent", p.ID()).
				With("values", outside)
		}
	}

	var forbidden []string
	for _, v := range d.PermittedValues {
		if containsValue(p.ForbiddenValues, v, p.BaseType) {
			forbidden = append(forbidden, describeValue(v))
		}
	}
	if len(forbidden) > 0 {
		res.Add(result.Error, "permitted values are forbidden by the parent", d, p).
			With("parent", p.ID()).
			With("values", forbidden)
	}
}

// containsValue compares values after converting them to ty when possible,
// so "1" and 1 are the same number value.
func containsValue(set []cty.Value, v cty.Value, ty cty.Type) bool {
	needle := normalize(v, ty)
	for _, candidate := range set {
		if normalize(candidate, ty).RawEquals(needle) {
			return true
		}
	}
	return false
}

func normalize(v cty.Value, ty cty.Type) cty.Value {
	if ty == cty.NilType || v.IsNull() || !v.IsKnown() {
		return v
	}
	if converted, err := convert.Convert(v, ty); err == nil {
		return converted
	}
	return v
}

// describeValue renders a primitive value for messages.
func describeValue(v cty.Value) string {
	switch {
	case v.Type() == cty.NilType:
		return "nil"
	case !v.IsKnown():
		return "(unknown)"
	case v.IsNull():
		return "null"
	}
	switch v.Type() {
	case cty.String:
		return `"` + v.AsString() + `"`
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return v.Type().FriendlyName()
}
