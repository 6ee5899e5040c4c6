// Package gate turns engine Results into accept or reject decisions. The
// engine only describes; the gate applies a STRICT or LAX severity policy on
// behalf of callers such as the pre-save hook and the on-demand validate
// action.
package gate

import (
	"context"
	"fmt"

	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/rule"
)

// Processor runs the rule units for an entity.
type Processor interface {
	Process(ctx context.Context, task rule.Task, node entity.Node) *result.Result
}

// Gate validates entities under one policy.
type Gate struct {
	processor Processor
	policy    Policy
	task      rule.Task
}

// New creates a Gate that runs the VALIDATE task.
func New(p Processor, policy Policy) *Gate {
	return &Gate{processor: p, policy: policy, task: rule.TaskValidate}
}

// WithTask returns a copy of g that runs task instead of VALIDATE.
func (g *Gate) WithTask(task rule.Task) *Gate {
	cp := *g
	cp.task = task
	return &cp
}

// Policy returns the policy the gate applies.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Validate processes node and reports the outcome. It never fails; a failing
// entity is a Report with Passed set to false.
func (g *Gate) Validate(ctx context.Context, node entity.Node) *Report {
	res := g.processor.Process(ctx, g.task, node)
	report := NewReport(node, g.task, g.policy, res)
	ctxlog.FromContext(ctx).Debug("Entity validated.",
		"entity", report.Entity,
		"variant", report.Variant.String(),
		"policy", string(g.policy),
		"passed", report.Passed,
		"failures", report.Failures(),
	)
	return report
}

// BeforeSave is the pre-persistence hook: it returns a *RejectedError when
// node fails the policy.
func (g *Gate) BeforeSave(ctx context.Context, node entity.Node) error {
	report := g.Validate(ctx, node)
	if !report.Passed {
		return &RejectedError{Report: report}
	}
	return nil
}

// RejectedError carries the report of an entity that failed the policy.
type RejectedError struct {
	Report *Report
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s '%s' rejected by %s policy: %d message(s) at or above %s",
		e.Report.Variant, e.Report.Entity, e.Report.Policy, e.Report.Failures(), e.Report.Policy.Threshold())
}
