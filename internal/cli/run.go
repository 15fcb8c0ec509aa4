package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/annotate"
	"github.com/aretw0/annotate/pkg/hook"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	CommonOptions
	Trace []string
	Count []string
	Skip  []string
	Vars  []string

	// Stdout receives program output, Stderr logs and hook counts.
	Stdout io.Writer
	Stderr io.Writer
}

// Execute handles the 'run' command logic: load, hook, run once, report and tear down.
func Execute(ctx context.Context, opts RunOptions) (err error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg, err := resolveConfig(opts.CommonOptions)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Stderr)
	if err != nil {
		return err
	}
	vars, err := parseVars(opts.Vars)
	if err != nil {
		return err
	}

	interp, err := annotate.Load(opts.ProgramPath,
		annotate.WithLogger(logger),
		annotate.WithMaxSteps(cfg.MaxSteps),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := interp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	hooks := append(cfg.Hooks, hooksFrom(hook.KindTrace, opts.Trace)...)
	hooks = append(hooks, hooksFrom(hook.KindCount, opts.Count)...)
	hooks = append(hooks, hooksFrom(hook.KindSkip, opts.Skip)...)
	if err := installHooks(interp, hooks, logger); err != nil {
		return err
	}

	frame, runErr := interp.Run(ctx, opts.Stdout, vars)
	if runErr == nil {
		logger.Info("run finished", "steps", frame.Steps)
	}
	reportCounts(opts.Stderr, interp.Hooked())

	return handleExecutionError(runErr)
}

func reportCounts(w io.Writer, infos []hook.Info) {
	for _, info := range infos {
		if info.Count == nil {
			continue
		}
		fmt.Fprintf(w, "%s: %d\n", info.NodeID, *info.Count)
	}
}
