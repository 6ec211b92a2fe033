// Package analysis provides the executors that score a selected scan.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/config"
	"github.com/yildizm/mediscan/internal/logger"
)

// Executor scores one file. Implementations must honor ctx cancellation
// and may be invoked from any goroutine.
type Executor interface {
	// Name returns the executor name (e.g., "simulated", "onnx")
	Name() string

	// Analyze produces risk and confidence scores for f
	Analyze(ctx context.Context, f common.File) (*common.Result, error)

	// Close releases executor resources
	Close() error
}

// Factory builds an executor from configuration
type Factory func(cfg config.AnalysisConfig, log *logger.Logger) (Executor, error)

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

// Register makes a factory available under name
func Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("executor name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %s cannot be nil", name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := factories[name]; exists {
		return fmt.Errorf("executor %s is already registered", name)
	}
	factories[name] = factory
	return nil
}

// Registered returns the sorted names of every registered executor
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	_ = Register(SimulatedName, func(cfg config.AnalysisConfig, log *logger.Logger) (Executor, error) {
		return NewSimulated(SimulatedOptions{Delay: cfg.Delay}), nil
	})
	_ = Register(ONNXName, func(cfg config.AnalysisConfig, log *logger.Logger) (Executor, error) {
		return NewONNX(ONNXOptions{
			ModelDir:    cfg.ModelDir,
			ModelFile:   cfg.ModelFile,
			InputName:   cfg.InputName,
			OutputName:  cfg.OutputName,
			InputSize:   cfg.InputSize,
			LibraryPath: cfg.LibraryPath,
		}, log)
	})
}

// New builds the configured executor wrapped with its timeout and rate
// limit decorators.
func New(cfg config.AnalysisConfig, log *logger.Logger) (Executor, error) {
	if log == nil {
		log = logger.Nop()
	}

	registryMu.RLock()
	factory, ok := factories[cfg.Executor]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown executor: %s", cfg.Executor)
	}

	exec, err := factory(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s executor: %w", cfg.Executor, err)
	}

	if cfg.MaxRPS > 0 {
		exec = WithRateLimit(exec, cfg.MaxRPS, cfg.Burst)
	}
	if cfg.Timeout > 0 {
		exec = WithTimeout(exec, cfg.Timeout)
	}

	log.Debug("executor ready: %s (timeout %v, max_rps %.2f)", cfg.Executor, cfg.Timeout, cfg.MaxRPS)
	return exec, nil
}
