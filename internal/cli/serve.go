package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/annotate"
	httpAdapter "github.com/aretw0/annotate/internal/adapters/http"
	"github.com/aretw0/annotate/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the serve command.
type ServeOptions struct {
	CommonOptions
	// Addr overrides the configured listen address.
	Addr string
}

// NewServer loads the program and builds the HTTP server for it.
// The returned Interpreter must be closed by the caller.
func NewServer(opts ServeOptions) (*http.Server, *annotate.Interpreter, *slog.Logger, error) {
	cfg, err := resolveConfig(opts.CommonOptions)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := createLogger(cfg.LogLevel, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, nil, err
	}

	interp, err := annotate.Load(opts.ProgramPath,
		annotate.WithLogger(logger),
		annotate.WithMaxSteps(cfg.MaxSteps),
		annotate.WithMetrics(metrics),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := installHooks(interp, cfg.Hooks, logger); err != nil {
		_ = interp.Close()
		return nil, nil, nil, err
	}

	addr := cfg.MetricsAddr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpAdapter.NewHandler(interp, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv, interp, logger, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	srv, interp, logger, err := NewServer(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := interp.Close(); err != nil {
			logger.Error("close failed", "err", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", srv.Addr, "program", interp.Program().Name)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		return srv.Close()
	}
	if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
