package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/gate"
	"golang.org/x/sync/errgroup"
)

// FailedError is returned by Run when at least one entity fails the policy.
type FailedError struct {
	Failed int
	Total  int
	Policy gate.Policy
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d of %d entities failed the %s policy", e.Failed, e.Total, e.Policy)
}

// Run validates the selected entities and writes one report per entity.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.EmitRuleGraph != "" {
		return a.EmitRuleGraph(ctx, a.config.EmitRuleGraph)
	}

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	nodes, err := a.selectEntities()
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		a.logger.Warn("No entities found in the loaded documents, nothing to validate.")
		return nil
	}

	a.logger.Info("🚀 Starting validation...", "entities", len(nodes), "task", a.config.Task, "policy", a.config.Policy)
	reports, err := a.validate(ctx, nodes)
	if err != nil {
		return err
	}

	switch a.config.Output {
	case OutputYAML:
		err = gate.WriteYAML(a.outW, reports...)
	default:
		err = gate.WriteText(a.outW, reports...)
	}
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if !r.Passed {
			failed++
		}
	}
	a.logger.Info("🏁 Validation finished.", "entities", len(reports), "failed", failed)
	if failed > 0 {
		return &FailedError{Failed: failed, Total: len(reports), Policy: a.gate.Policy()}
	}
	return nil
}

// validate runs the gate over nodes, several entities at a time. Reports keep
// the order of nodes.
func (a *App) validate(ctx context.Context, nodes []entity.Node) ([]*gate.Report, error) {
	reports := make([]*gate.Report, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	if a.config.WorkerCount > 0 {
		g.SetLimit(a.config.WorkerCount)
	}
	for i, n := range nodes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = a.gate.Validate(gctx, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validation interrupted: %w", err)
	}
	return reports, nil
}

// selectEntities returns the configured entities, or all of them sorted by id.
func (a *App) selectEntities() ([]entity.Node, error) {
	if len(a.config.Entities) == 0 {
		return a.model.Entities.All(), nil
	}
	nodes := make([]entity.Node, 0, len(a.config.Entities))
	for _, id := range a.config.Entities {
		n, ok := a.model.Entities.Get(id)
		if !ok {
			return nil, fmt.Errorf("entity '%s' not found in the loaded documents", id)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// EmitRuleGraph writes the rule graph artifact to path, or to the output
// writer when path is "-".
func (a *App) EmitRuleGraph(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	if path == "-" {
		return a.graph.Encode(a.outW)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create rule graph artifact: %w", err)
	}
	if err := a.graph.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write rule graph artifact: %w", err)
	}
	logger.Info("Rule graph artifact written.", "path", path, "units", len(a.graph.UnitNames()))
	return nil
}
