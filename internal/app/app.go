package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/vk/rulegridgo/internal/config"
	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/gate"
	"github.com/vk/rulegridgo/internal/metrics"
	"github.com/vk/rulegridgo/internal/registry"
	"github.com/vk/rulegridgo/internal/rule"
	"github.com/vk/rulegridgo/internal/rulegraph"
	"github.com/vk/rulegridgo/internal/scheduler"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	model      *config.Model
	graph      *rulegraph.Graph
	processor  *scheduler.Processor
	gate       *gate.Gate
	metrics    *metrics.Collector
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Reports are written to
// outW and logs to logW. Configuration errors are fatal startup errors and
// panic; the entrypoint recovers them.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Create and populate the registry with Go handlers.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Built-in manifests first, then user manifests and documents.
	model, err := loader.LoadSources(ctx, registry.Manifests(modules...))
	if err != nil {
		panic(fmt.Errorf("failed to load module manifests: %w", err))
	}
	var paths []string
	if cfg.RulesPath != "" {
		paths = append(paths, cfg.RulesPath)
	}
	paths = append(paths, cfg.DocumentPaths...)
	if len(paths) > 0 {
		loaded, err := loader.Load(ctx, paths...)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		if err := model.Merge(loaded); err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
	}
	logger.Debug("Configuration loaded and translated into unified model.", "rules", len(model.Rules), "entities", model.Entities.Len())

	reg.PopulateDefinitionsFromModel(model)
	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between code and manifests is a programmer error.
		panic(err)
	}
	units, err := reg.Units()
	if err != nil {
		panic(err)
	}

	graph, err := loadRuleGraph(ctx, cfg.RuleGraphPath, units)
	if err != nil {
		panic(err)
	}

	collector := metrics.New()
	processor, err := scheduler.New(graph, units,
		scheduler.WithWorkers(cfg.WorkerCount),
		scheduler.WithUnitTimeout(cfg.UnitTimeout),
		scheduler.WithMetrics(collector),
	)
	if err != nil {
		panic(fmt.Errorf("failed to prepare rule processor: %w", err))
	}

	return &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		graph:     graph,
		processor: processor,
		gate:      gate.New(processor, gate.Policy(cfg.Policy)).WithTask(rule.Task(cfg.Task)),
		metrics:   collector,
	}
}

// loadRuleGraph builds the rule graph from units, or decodes a precomputed
// artifact when path is set.
func loadRuleGraph(ctx context.Context, path string, units []rule.Unit) (*rulegraph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	if path == "" {
		logger.Debug("Building rule graph from registered units.", "units", len(units))
		return rulegraph.Build(ctx, units)
	}

	logger.Debug("Loading precomputed rule graph.", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule graph artifact: %w", err)
	}
	defer f.Close()
	return rulegraph.Decode(ctx, f)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Gate returns the gate used to validate entities.
func (a *App) Gate() *gate.Gate {
	return a.gate
}

// Model returns the loaded configuration model.
func (a *App) Model() *config.Model {
	return a.model
}
