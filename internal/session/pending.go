package session

import (
	"context"
	"sync"
	"time"

	"github.com/yildizm/mediscan/internal/analysis"
	"github.com/yildizm/mediscan/internal/common"
)

// Pending is the one live executor invocation for a generation. The host
// calls Run off its event loop and hands the Completion back to
// Session.Complete on it.
type Pending struct {
	Generation uint64
	File       common.File

	ctx      context.Context
	executor analysis.Executor

	once       sync.Once
	completion Completion
}

// Completion carries an executor outcome back to the session
type Completion struct {
	Generation uint64
	Result     *common.Result
	Err        error
	Elapsed    time.Duration
}

// Run invokes the executor. Repeated calls return the first outcome.
func (p *Pending) Run() Completion {
	p.once.Do(func() {
		start := time.Now()
		result, err := p.executor.Analyze(p.ctx, p.File)
		p.completion = Completion{
			Generation: p.Generation,
			Result:     result,
			Err:        err,
			Elapsed:    time.Since(start),
		}
	})
	return p.completion
}

// Context returns the invocation context, cancelled on supersession
func (p *Pending) Context() context.Context {
	return p.ctx
}
