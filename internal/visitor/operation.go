package visitor

import (
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
)

// OperationVisitor checks the structural completeness of operations, their
// execution steps and the technology interfaces they run on. Steps that
// invoke other operations are followed, so recursive invocation chains are
// reported as cycles.
type OperationVisitor struct {
	Base
}

func (OperationVisitor) VisitOperation(t *Traversal, o *entity.Operation, _ ...any) *result.Result {
	res := result.New()

	if effectiveInterface(o) == nil {
		res.Errorf(o, "operation '%s' must be executable on a technology interface", o.Name)
	}
	if len(o.Execution) == 0 && o.InheritsFrom == nil {
		res.Warnf(o, "operation '%s' has no execution steps", o.Name)
	}

	seen := make(map[*entity.OperationStep]struct{}, len(o.Execution))
	for i, s := range o.Execution {
		Require(s != nil, o, "execution step %d is nil", i)
		if _, dup := seen[s]; dup {
			res.Add(result.Error, "step appears more than once in the execution", o, s).
				With("step", s.ID())
			continue
		}
		seen[s] = struct{}{}
		if s.Operation != nil && s.Operation != o {
			res.Add(result.Error, "step belongs to a different operation", o, s).
				With("step", s.ID()).
				With("owner", s.Operation.ID())
		}
	}

	res.Merge(
		VisitEach(t, o.Execution),
		t.Visit(o.ExecutableOn),
		t.Visit(o.InheritsFrom),
	)
	return res
}

func (OperationVisitor) VisitOperationStep(t *Traversal, s *entity.OperationStep, _ ...any) *result.Result {
	res := result.New()
	if s.Action == "" {
		res.Errorf(s, "operation step '%s' must declare an action", s.Name)
	}
	if s.Operation == nil {
		res.Warnf(s, "operation step '%s' is not part of any operation", s.Name)
	}
	res.Merge(t.Visit(s.Invokes))
	return res
}

func (OperationVisitor) VisitTechnologyInterface(_ *Traversal, ti *entity.TechnologyInterface, _ ...any) *result.Result {
	res := result.New()
	if ti.Name == "" {
		res.Errorf(ti, "technology interface '%s' must have a name", ti.ID())
	}
	if ti.Protocol == "" {
		res.Warnf(ti, "technology interface '%s' does not declare a protocol", ti.ID())
	}
	return res
}

// effectiveInterface returns the interface of o or of its nearest ancestor.
func effectiveInterface(o *entity.Operation) *entity.TechnologyInterface {
	seen := make(map[*entity.Operation]struct{})
	for cur := o; cur != nil; cur = cur.InheritsFrom {
		if _, ok := seen[cur]; ok {
			return nil
		}
		seen[cur] = struct{}{}
		if cur.ExecutableOn != nil {
			return cur.ExecutableOn
		}
	}
	return nil
}
