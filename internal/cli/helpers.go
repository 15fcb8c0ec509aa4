package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/annotate"
	"github.com/aretw0/annotate/internal/config"
	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/pkg/hook"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CommonOptions are shared by the commands that load a program.
type CommonOptions struct {
	ProgramPath string
	ConfigPath  string
	// LogLevel and MaxSteps override the config file when set.
	LogLevel string
	MaxSteps int
}

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(opts CommonOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.MaxSteps > 0 {
		cfg.MaxSteps = opts.MaxSteps
	}
	return cfg, nil
}

// createLogger configures the application logger.
// It writes to w so program output on stdout is never interleaved with logs.
func createLogger(level string, w io.Writer) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithWriter(w, lvl), nil
}

// parseVars turns name=value pairs into initial run variables.
func parseVars(pairs []string) (map[string]int64, error) {
	vars := make(map[string]int64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", p)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", p, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// hooksFrom expands per-kind flag lists into hook entries.
func hooksFrom(kind hook.Kind, nodes []string) []config.Hook {
	hooks := make([]config.Hook, 0, len(nodes))
	for _, n := range nodes {
		hooks = append(hooks, config.Hook{Node: n, Kind: string(kind)})
	}
	return hooks
}

// installHooks installs hooks in order; a later hook on the same node replaces the earlier one.
func installHooks(interp *annotate.Interpreter, hooks []config.Hook, logger *slog.Logger) error {
	for _, h := range hooks {
		kind, err := hook.ParseKind(h.Kind)
		if err != nil {
			return fmt.Errorf("hook on %q: %w", h.Node, err)
		}
		if err := interp.Install(h.Node, kind); err != nil {
			return fmt.Errorf("hook on %q: %w", h.Node, err)
		}
		logger.Debug("hook installed", "node", h.Node, "kind", kind)
	}
	return nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
