package scheduler

import (
	"time"

	"github.com/vk/rulegridgo/internal/metrics"
)

// DefaultWorkers is the pool size used when WithWorkers is not given.
const DefaultWorkers = 10

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers bounds the number of units running at the same time within one
// Process call. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithUnitTimeout limits how long a single unit may run. Zero disables the
// limit.
func WithUnitTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d >= 0 {
			p.unitTimeout = d
		}
	}
}

// WithMetrics records executions on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Processor) {
		p.metrics = c
	}
}
