package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/vk/rulegridgo/internal/ctxlog"
	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/metrics"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/rule"
	"github.com/vk/rulegridgo/internal/rulegraph"
	"golang.org/x/sync/errgroup"
)

// Processor executes the rule units that apply to an entity. It is safe for
// concurrent use; every Process call has its own state.
type Processor struct {
	plans       map[planKey]plan
	workers     int
	unitTimeout time.Duration
	metrics     *metrics.Collector
}

// New resolves the precomputed graph against the unit implementations. An
// error here means the engine can not start.
func New(g *rulegraph.Graph, units []rule.Unit, opts ...Option) (*Processor, error) {
	if g == nil {
		return nil, errors.New("rule graph is missing")
	}

	byName := make(map[string]rule.Unit, len(units))
	for _, u := range units {
		name := u.Descriptor().Name
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("rule unit '%s' is registered more than once", name)
		}
		byName[name] = u
	}

	plans, err := buildPlans(g, byName)
	if err != nil {
		return nil, err
	}

	p := &Processor{plans: plans, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// future is the schedule entry of one unit within a single Process call.
// own is written before done is closed.
type future struct {
	done chan struct{}
	own  *result.Result
}

// Process runs the units registered for task and the variant of node and
// returns their merged output. Unit failures never surface as errors; they
// are logged and the unit contributes nothing.
func (p *Processor) Process(ctx context.Context, task rule.Task, node entity.Node) *result.Result {
	if node == nil {
		return result.New()
	}
	v := node.Variant()
	steps := p.plans[planKey{task: task, variant: v}]
	p.metrics.ObserveProcess(string(task), v.String())
	if len(steps) == 0 {
		return result.New()
	}

	logger := ctxlog.FromContext(ctx).With(
		"run_id", uuid.NewString(),
		"task", string(task),
		"variant", v.String(),
		"entity", node.ID(),
	)
	logger.Debug("Processing entity.", "units", len(steps), "workers", p.workers)
	ctx = ctxlog.WithLogger(ctx, logger)

	futures := make([]*future, len(steps))
	for i := range futures {
		futures[i] = &future{done: make(chan struct{})}
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range steps {
		s, f := steps[i], futures[i]
		g.Go(func() error {
			defer close(f.done)

			work := result.New()
			for _, d := range s.deps {
				select {
				case <-futures[d].done:
				case <-ctx.Done():
					logger.Warn("Rule unit skipped, invocation cancelled.", "unit", s.name, "error", ctx.Err())
					return nil
				}
				work.Merge(futures[d].own)
			}

			mark := work.Snapshot()
			if p.execute(ctx, logger, s, node, work) {
				f.own = work.Since(mark)
			}
			return nil
		})
	}
	// Goroutines never return errors; failures are isolated per unit.
	_ = g.Wait()

	merged := result.New()
	for _, f := range futures {
		merged.Merge(f.own)
	}
	logger.Debug("Entity processed.", "errors", merged.ErrorCount(), "warnings", merged.WarningCount(), "infos", merged.InfoCount())
	return merged
}

// execute runs one unit and reports whether its output may be kept.
func (p *Processor) execute(ctx context.Context, logger *slog.Logger, s step, node entity.Node, work *result.Result) bool {
	unitLogger := logger.With("unit", s.name)
	unitLogger.Debug("Rule unit started.")
	start := time.Now()

	outcome, err := p.invoke(ctx, s.unit, node, work)
	elapsed := time.Since(start)
	p.metrics.ObserveUnit(s.name, outcome, elapsed)

	if err != nil {
		unitLogger.Error("Rule unit failed, discarding its output.", "outcome", outcome, "error", err, "duration", elapsed)
		return false
	}
	unitLogger.Debug("Rule unit finished.", "duration", elapsed)
	return true
}

// invoke calls the unit, converting panics and timeouts into errors. With a
// timeout the unit runs on its own goroutine and is abandoned on expiry; the
// working Result it writes to is discarded with it.
func (p *Processor) invoke(ctx context.Context, u rule.Unit, node entity.Node, work *result.Result) (string, error) {
	if p.unitTimeout <= 0 {
		return call(ctx, u, node, work)
	}

	ctx, cancel := context.WithTimeout(ctx, p.unitTimeout)
	defer cancel()

	type outcome struct {
		label string
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		label, err := call(ctx, u, node, work)
		done <- outcome{label: label, err: err}
	}()

	select {
	case o := <-done:
		return o.label, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return metrics.OutcomeTimeout, fmt.Errorf("rule unit exceeded timeout of %s", p.unitTimeout)
		}
		return metrics.OutcomeError, ctx.Err()
	}
}

func call(ctx context.Context, u rule.Unit, node entity.Node, work *result.Result) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			label = metrics.OutcomePanic
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	if err := u.Process(ctx, node, work); err != nil {
		return metrics.OutcomeError, err
	}
	return metrics.OutcomeOK, nil
}

// PanicError wraps a value recovered from a rule unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rule unit panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error, such as a
// visitor.ContractViolation.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
