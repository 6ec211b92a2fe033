// Package monitor counts analysis invocations and how they ended.
package monitor

import (
	"context"
	"time"

	"github.com/yildizm/mediscan/internal/analysis"
	"github.com/yildizm/mediscan/internal/common"
)

// Collector aggregates invocation metrics for one executor
type Collector struct {
	executor string
	started  time.Time
	now      func() time.Time

	inFlight *Counter
	timer    *Timer
	outcomes map[Outcome]*Counter
}

// NewCollector creates a collector for the named executor
func NewCollector(executor string) *Collector {
	c := &Collector{
		executor: executor,
		started:  time.Now(),
		now:      time.Now,
		inFlight: NewCounter("in_flight"),
		timer:    NewTimer("analyze"),
		outcomes: make(map[Outcome]*Counter, len(Outcomes)),
	}
	for _, o := range Outcomes {
		c.outcomes[o] = NewCounter(string(o))
	}
	return c
}

// Record counts one finished invocation
func (c *Collector) Record(d time.Duration, err error) {
	c.timer.Record(d)
	c.outcomes[Classify(err, c.executor)].Inc()
}

// Classify maps an executor error onto an outcome
func Classify(err error, executor string) Outcome {
	if err == nil {
		return OutcomeSucceeded
	}
	switch common.AsAnalysisError(err, executor).Type {
	case common.ErrTypeTimeout:
		return OutcomeTimedOut
	case common.ErrTypeCancelled:
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// Count returns how many invocations ended with o
func (c *Collector) Count(o Outcome) int64 {
	if counter, ok := c.outcomes[o]; ok {
		return counter.Get()
	}
	return 0
}

// Reset clears all counters and restarts the uptime clock
func (c *Collector) Reset() {
	c.timer.Reset()
	for _, counter := range c.outcomes {
		counter.Reset()
	}
	c.started = c.now()
}

// Instrument wraps exec so that every Analyze call is recorded in c
func Instrument(exec analysis.Executor, c *Collector) analysis.Executor {
	return &instrumentedExecutor{Executor: exec, collector: c}
}

type instrumentedExecutor struct {
	analysis.Executor
	collector *Collector
}

func (e *instrumentedExecutor) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	c := e.collector
	c.inFlight.Inc()
	start := c.now()

	result, err := e.Executor.Analyze(ctx, f)

	c.Record(c.now().Sub(start), err)
	c.inFlight.dec()
	return result, err
}
