package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/yildizm/mediscan/internal/common"
)

type timeoutExecutor struct {
	Executor
	timeout time.Duration
}

// WithTimeout bounds every Analyze call by timeout. A call that runs past
// it fails with a timeout AnalysisError.
func WithTimeout(exec Executor, timeout time.Duration) Executor {
	return &timeoutExecutor{Executor: exec, timeout: timeout}
}

func (t *timeoutExecutor) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.Executor.Analyze(ctx, f)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, common.NewAnalysisError(common.ErrTypeTimeout,
			fmt.Sprintf("analysis exceeded %v", t.timeout), t.Name(), err)
	}
	return result, err
}

type rateLimitedExecutor struct {
	Executor
	limiter *rate.Limiter
}

// WithRateLimit caps how often the wrapped executor is invoked. Callers
// block until a token is available or their context ends.
func WithRateLimit(exec Executor, perSecond float64, burst int) Executor {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedExecutor{
		Executor: exec,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *rateLimitedExecutor) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait fails early when the next token lands past the deadline
		if deadline, ok := ctx.Deadline(); ok {
			return nil, common.NewAnalysisError(common.ErrTypeTimeout,
				fmt.Sprintf("rate limit wait would pass the deadline in %v", time.Until(deadline).Round(time.Millisecond)),
				r.Name(), err)
		}
		return nil, common.NewAnalysisError(common.ErrTypeBackend, "rate limit wait failed", r.Name(), err)
	}
	return r.Executor.Analyze(ctx, f)
}
