// Package app assembles the scan stack from configuration.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/dig"

	"github.com/yildizm/mediscan/internal/analysis"
	"github.com/yildizm/mediscan/internal/config"
	"github.com/yildizm/mediscan/internal/logger"
	"github.com/yildizm/mediscan/internal/monitor"
	"github.com/yildizm/mediscan/internal/preview"
	"github.com/yildizm/mediscan/internal/session"
)

// App is the assembled scan stack. Close releases it in reverse order.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Previews *preview.Store
	Executor analysis.Executor
	Metrics  *monitor.Collector
	Session  *session.Session
}

type appParams struct {
	dig.In

	Config   *config.Config
	Log      *logger.Logger
	Previews *preview.Store
	Executor analysis.Executor
	Metrics  *monitor.Collector
	Session  *session.Session
}

// BuildContainer creates and configures a dependency injection container
func BuildContainer(cfg *config.Config, log *logger.Logger) (*dig.Container, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if log == nil {
		log = logger.Nop()
	}

	container := dig.New()

	// Register configuration and logger
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *logger.Logger { return log }); err != nil {
		return nil, err
	}

	// Register preview store
	if err := container.Provide(func(cfg *config.Config) preview.Options {
		return preview.Options{
			CacheDir:       cfg.Preview.CacheDir,
			MaxBytes:       cfg.Preview.MaxBytes,
			ThumbnailWidth: cfg.Preview.ThumbnailWidth,
			RequireImage:   cfg.Preview.RequireImage,
		}
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(preview.NewStore); err != nil {
		return nil, err
	}

	// Register executor, instrumented by the metrics collector
	if err := container.Provide(func(cfg *config.Config) *monitor.Collector {
		return monitor.NewCollector(cfg.Analysis.Executor)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, log *logger.Logger, metrics *monitor.Collector) (analysis.Executor, error) {
		exec, err := analysis.New(cfg.Analysis, log)
		if err != nil {
			return nil, err
		}
		return monitor.Instrument(exec, metrics), nil
	}); err != nil {
		return nil, err
	}

	// Register session
	if err := container.Provide(func(exec analysis.Executor, store *preview.Store, log *logger.Logger) *session.Session {
		return session.New(exec, store, log)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// New builds the container and resolves the full stack
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	container, err := BuildContainer(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}

	var a *App
	err = container.Invoke(func(p appParams) {
		a = &App{
			Config:   p.Config,
			Log:      p.Log,
			Previews: p.Previews,
			Executor: p.Executor,
			Metrics:  p.Metrics,
			Session:  p.Session,
		}
	})
	if err != nil {
		// release a store that was built before the failure
		_ = container.Invoke(func(s *preview.Store) { _ = s.Close() })
		return nil, fmt.Errorf("failed to assemble %s executor: %w", cfg.Analysis.Executor, dig.RootCause(err))
	}

	a.Log.WithComponent("app").InfoWithFields("stack ready", []logger.Field{
		logger.F("executor", a.Executor.Name()),
		logger.F("session", a.Session.ID()),
		logger.F("cache_dir", a.Previews.Dir()),
	})
	return a, nil
}

// NewRunner starts a headless runner over the app's session
func (a *App) NewRunner() *session.Runner {
	return session.NewRunner(a.Session, a.Log)
}

// Close closes the session, the executor and the preview store
func (a *App) Close() error {
	return errors.Join(
		a.Session.Close(),
		a.Executor.Close(),
		a.Previews.Close(),
	)
}
