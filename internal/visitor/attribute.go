package visitor

import (
	"strconv"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// AttributeVisitor checks attribute cardinality and the compatibility of an
// attribute with the attribute it overrides. It follows Override and
// InheritsFrom references.
type AttributeVisitor struct {
	Base
}

func (AttributeVisitor) VisitAttribute(t *Traversal, a *entity.Attribute, _ ...any) *result.Result {
	res := result.New()
	checkCardinality(res, a)

	if a.DataType == nil {
		res.Warnf(a, "attribute '%s' does not declare a data type", a.Name)
	}

	if o := a.Override; o != nil && o != a {
		checkOverride(res, a, o)
	}

	res.Merge(t.Visit(a.Override), t.Visit(a.InheritsFrom))
	return res
}

func checkCardinality(res *result.Result, a *entity.Attribute) {
	if a.LowerBound < 0 {
		res.Errorf(a, "lower bound must not be negative").
			With("lowerBound", a.LowerBound)
	}
	switch {
	case a.Unbounded():
	case a.UpperBound < 0:
		res.Errorf(a, "upper bound must be non-negative or unbounded").
			With("upperBound", a.UpperBound)
	case a.UpperBound < a.LowerBound:
		res.Errorf(a, "upper bound must be greater than or equal to the lower bound").
			With("lowerBound", a.LowerBound).
			With("upperBound", a.UpperBound)
	case a.UpperBound == 0:
		res.Warnf(a, "upper bound of zero makes attribute '%s' unusable", a.Name)
	}
}

func checkOverride(res *result.Result, a, o *entity.Attribute) {
	if a.LowerBound < o.LowerBound {
		res.Add(result.Error, "lower bound is less than the lower bound of the overridden attribute", a, o).
			With("lowerBound", a.LowerBound).
			With("overriddenLowerBound", o.LowerBound)
	}
	if !o.Unbounded() && (a.Unbounded() || a.UpperBound > o.UpperBound) {
		res.Add(result.Error, "upper bound exceeds the upper bound of the overridden attribute", a, o).
			With("upperBound", formatBound(a.UpperBound)).
			With("overriddenUpperBound", formatBound(o.UpperBound))
	}
	if a.DataType != nil && o.DataType != nil && !entity.DerivesFrom(a.DataType, o.DataType) {
		res.Add(result.Error, "data type is not compatible with the data type of the overridden attribute", a, o).
			With("dataType", a.DataType.ID()).
			With("overriddenDataType", o.DataType.ID())
	}
}

func formatBound(b int) string {
	if b == entity.Unbounded {
		return "*"
	}
	return strconv.Itoa(b)
}
