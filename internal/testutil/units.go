package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/rulegridgo/internal/entity"
	"github.com/vk/rulegridgo/internal/result"
	"github.com/vk/rulegridgo/internal/rule"
)

// ExecutionRecord holds the start and end times of one unit execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Recorder builds rule units that record when they ran.
type Recorder struct {
	mu      sync.Mutex
	records map[string]*ExecutionRecord
	calls   map[string]int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		records: make(map[string]*ExecutionRecord),
		calls:   make(map[string]int),
	}
}

// UnitSpec describes a unit built by Recorder.Unit.
type UnitSpec struct {
	Name          string
	AppliesTo     []entity.Variant
	Tasks         []rule.Task
	DependsOn     []string
	ExecuteBefore []string
	Sleep         time.Duration
	Errors        int
	Warnings      int
	Fn            rule.ProcessFunc
}

// Unit returns a rule unit that sleeps for spec.Sleep, adds spec.Errors
// errors and spec.Warnings warnings about the node, then calls spec.Fn if set.
// Tasks default to VALIDATE.
func (r *Recorder) Unit(spec UnitSpec) rule.Unit {
	tasks := spec.Tasks
	if len(tasks) == 0 {
		tasks = []rule.Task{rule.TaskValidate}
	}
	desc := rule.Descriptor{
		Name:          spec.Name,
		AppliesTo:     spec.AppliesTo,
		Tasks:         tasks,
		DependsOn:     spec.DependsOn,
		ExecuteBefore: spec.ExecuteBefore,
	}
	return rule.New(desc, func(ctx context.Context, n entity.Node, res *result.Result) error {
		start := time.Now()
		defer func() {
			r.mu.Lock()
			r.records[spec.Name] = &ExecutionRecord{Start: start, End: time.Now()}
			r.calls[spec.Name]++
			r.mu.Unlock()
		}()

		if spec.Sleep > 0 {
			select {
			case <-time.After(spec.Sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for i := 0; i < spec.Errors; i++ {
			res.Errorf(n, "%s error %d", spec.Name, i)
		}
		for i := 0; i < spec.Warnings; i++ {
			res.Warnf(n, "%s warning %d", spec.Name, i)
		}
		if spec.Fn != nil {
			return spec.Fn(ctx, n, res)
		}
		return nil
	})
}

// Record returns the execution record of the named unit.
func (r *Recorder) Record(name string) (*ExecutionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	return rec, ok
}

// Calls returns how often the named unit ran.
func (r *Recorder) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}
