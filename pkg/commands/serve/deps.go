// Package serve provides the CLI command serving mocked providers over HTTP.
package serve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/smartcontractkit/web3-mock/config"
	"github.com/smartcontractkit/web3-mock/mock"
)

// ConfigLoaderFunc loads the engine configuration. An empty path loads it from the environment.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// EngineFactoryFunc creates the engine serving the mocks of cfg.
type EngineFactoryFunc func(cfg *config.Config) (*mock.Engine, error)

// ServeFunc serves h on addr until ctx is done.
type ServeFunc func(ctx context.Context, addr string, h http.Handler) error

const shutdownTimeout = 5 * time.Second

func defaultConfigLoader(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadEnv()
	}

	return config.Load(path)
}

func defaultServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

// Deps holds the injectable dependencies of the serve command.
// All fields are optional; nil values use production defaults.
type Deps struct {
	// ConfigLoader loads the engine configuration.
	// Default: config.Load, or config.LoadEnv without a path
	ConfigLoader ConfigLoaderFunc

	// EngineFactory creates the engine.
	// Default: mock.NewFromConfig
	EngineFactory EngineFactoryFunc

	// Serve serves the providers.
	// Default: an http.Server shut down when the command context is done
	Serve ServeFunc
}

func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = defaultConfigLoader
	}
	if d.EngineFactory == nil {
		d.EngineFactory = mock.NewFromConfig
	}
	if d.Serve == nil {
		d.Serve = defaultServe
	}
}
