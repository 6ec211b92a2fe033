package analysis

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yildizm/mediscan/internal/common"
)

// SimulatedName is the registry name of the simulated executor
const SimulatedName = "simulated"

// SimulatedOptions configures the simulated executor
type SimulatedOptions struct {
	// Delay is how long each analysis takes
	Delay time.Duration

	// Seed makes the score sequence reproducible when non-zero
	Seed uint64
}

// Simulated waits for a fixed delay and returns random scores:
// risk uniform in [0,100) and confidence uniform in [85,95).
type Simulated struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated executor
func NewSimulated(opts SimulatedOptions) *Simulated {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Simulated{
		delay: opts.Delay,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Name returns the executor name
func (s *Simulated) Name() string {
	return SimulatedName
}

// Analyze waits for the configured delay, then draws scores
func (s *Simulated) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	start := time.Now()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	risk := s.rng.Float64() * 100
	confidence := 85 + s.rng.Float64()*10
	s.mu.Unlock()

	return &common.Result{
		Risk:       risk,
		Confidence: confidence,
		Executor:   SimulatedName,
		Elapsed:    time.Since(start),
	}, nil
}

// Close is a no-op
func (s *Simulated) Close() error {
	return nil
}
