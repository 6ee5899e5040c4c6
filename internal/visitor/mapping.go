package visitor

import (
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// MappingVisitor checks that an attribute mapping connects compatible
// attributes. A mapping without both ends violates the model contract.
type MappingVisitor struct {
	Base
}

func (MappingVisitor) VisitAttributeMapping(_ *Traversal, m *entity.AttributeMapping, _ ...any) *result.Result {
	Require(m.Source != nil, m, "attribute mapping has no source attribute")
	Require(m.Target != nil, m, "attribute mapping has no target attribute")

	res := result.New()
	src, tgt := m.Source, m.Target

	if src == tgt {
		res.Warnf(m, "attribute mapping '%s' maps attribute '%s' onto itself", m.ID(), src.ID())
	}

	if src.DataType != nil && tgt.DataType != nil && !entity.DerivesFrom(src.DataType, tgt.DataType) {
		res.Add(result.Warning, "source data type differs from target data type", m, src, tgt).
			With("sourceDataType", src.DataType.ID()).
			With("targetDataType", tgt.DataType.ID())
	}

	if !tgt.Unbounded() && (src.Unbounded() || src.UpperBound > tgt.UpperBound) {
		res.Add(result.Error, "source upper bound exceeds target upper bound", m, src, tgt).
			With("sourceUpperBound", formatBound(src.UpperBound)).
			With("targetUpperBound", formatBound(tgt.UpperBound))
	}
	return res
}
