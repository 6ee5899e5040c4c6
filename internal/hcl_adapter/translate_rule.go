package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/ctxlog"
)

// translateRule converts the HCL-specific rule schema into the agnostic model.
func (l *Loader) translateRule(ctx context.Context, b *ruleBlock) (*config.RuleDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("rule", b.Name)
	logger.Debug("Translating HCL rule to internal config model.")

	if b.Handler == "" {
		return nil, fmt.Errorf("%s: rule '%s' must name a handler", position(b.DeclRange), b.Name)
	}

	tasks := b.Tasks
	if len(tasks) == 0 {
		logger.Debug("Rule declares no tasks, defaulting to VALIDATE.")
		tasks = []string{"VALIDATE"}
	}

	return &config.RuleDefinition{
		Name:          b.Name,
		Description:   b.Description,
		Handler:       b.Handler,
		AppliesTo:     b.AppliesTo,
		Tasks:         tasks,
		DependsOn:     b.DependsOn,
		ExecuteBefore: b.ExecuteBefore,
		Source:        position(b.DeclRange),
	}, nil
}
