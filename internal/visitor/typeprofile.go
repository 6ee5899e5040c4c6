package visitor

import (
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// TypeProfileVisitor applies each parent's validation policy to the
// attributes a type profile declares, then walks up the inheritance chain.
type TypeProfileVisitor struct {
	Base
}

func (TypeProfileVisitor) VisitTypeProfile(t *Traversal, p *entity.TypeProfile, _ ...any) *result.Result {
	res := result.New()

	declared := make(map[string]struct{})
	for _, name := range p.AttributeNames() {
		if _, dup := declared[name]; dup {
			res.Errorf(p, "attribute '%s' is declared more than once", name).
				With("attribute", name)
			continue
		}
		declared[name] = struct{}{}
	}

	for _, parent := range p.InheritsFrom {
		if parent == nil || parent == p {
			continue
		}
		checkPolicy(res, p, parent, declared)
	}

	res.Merge(VisitEach(t, p.InheritsFrom))
	return res
}

func checkPolicy(res *result.Result, child, parent *entity.TypeProfile, declared map[string]struct{}) {
	required := parent.AttributeNames()
	if len(required) == 0 {
		return
	}

	var defined, undefined []string
	for _, name := range required {
		if _, ok := declared[name]; ok {
			defined = append(defined, name)
		} else {
			undefined = append(undefined, name)
		}
	}

	switch parent.ValidationPolicy {
	case entity.PolicyAll:
		if len(undefined) > 0 {
			res.Add(result.Error, "type profile does not define all attributes of its parent", child, parent).
				With("parent", parent.ID()).
				With("policy", string(entity.PolicyAll)).
				With("undefinedAttributes", undefined)
		}
	case entity.PolicyAny:
		if len(defined) == 0 {
			res.Add(result.Error, "type profile defines none of the attributes of its parent", child, parent).
				With("parent", parent.ID()).
				With("policy", string(entity.PolicyAny)).
				With("undefinedAttributes", undefined)
		}
	case entity.PolicyOne:
		if len(defined) != 1 {
			res.Add(result.Error, "type profile must define exactly one attribute of its parent", child, parent).
				With("parent", parent.ID()).
				With("policy", string(entity.PolicyOne)).
				With("definedAttributes", defined)
		}
	case entity.PolicyNone:
		if len(defined) > 0 {
			res.Add(result.Error, "type profile must not define attributes of its parent", child, parent).
				With("parent", parent.ID()).
				With("policy", string(entity.PolicyNone)).
				With("definedAttributes", defined)
		}
	}
}
