package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/annotate/internal/compiler"
	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/internal/runtime"
	"github.com/aretw0/annotate/pkg/annotation"
	"github.com/aretw0/annotate/pkg/domain"
	"github.com/aretw0/annotate/pkg/hook"
	"github.com/aretw0/annotate/pkg/observability"
)

// ErrClosed is returned by operations on a closed Interpreter.
var ErrClosed = errors.New("interpreter closed")

// Interpreter is the high-level entry point.
// It owns a Program, the Engine executing it and the annotation Table of its hooks.
type Interpreter struct {
	engine *runtime.Engine
	table  *runtime.Table
	logger *slog.Logger

	hooks      domain.LifecycleHooks
	groupHooks annotation.Hooks
	maxSteps   int
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithLifecycleHooks registers node execution hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Interpreter) {
		i.hooks = hooks
	}
}

// WithAnnotationHooks registers hooks on the annotation table.
func WithAnnotationHooks(hooks annotation.Hooks) Option {
	return func(i *Interpreter) {
		i.groupHooks = hooks
	}
}

// WithMetrics wires both hook sets to Prometheus collectors.
// It replaces hooks set by WithLifecycleHooks and WithAnnotationHooks.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *Interpreter) {
		i.hooks = m.EngineHooks()
		i.groupHooks = m.GroupHooks()
	}
}

// WithMaxSteps bounds the number of nodes a single run may execute.
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) {
		i.maxSteps = n
	}
}

// Load parses a program file and creates an Interpreter for it.
func Load(path string, opts ...Option) (*Interpreter, error) {
	prog, err := compiler.NewParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(prog, opts...)
}

// New creates an Interpreter for an already linked program.
func New(program *domain.Program, opts ...Option) (*Interpreter, error) {
	i := &Interpreter{}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = logging.NewNop()
	}
	if program.Name != "" {
		i.logger = i.logger.With("program", program.Name)
	}

	table := runtime.NewTable(
		annotation.WithLogger(i.logger),
		annotation.WithHooks(i.groupHooks),
	)

	engine, err := runtime.NewEngine(program,
		runtime.WithAnnotations(table),
		runtime.WithLogger(i.logger),
		runtime.WithLifecycleHooks(i.hooks),
		runtime.WithMaxSteps(i.maxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind program: %w", err)
	}
	i.engine = engine
	i.table = engine.Annotations()

	return i, nil
}

// Run executes the program once. Runs may proceed concurrently with each other and
// with hook changes. A run interrupted by Close stops at the next node with ErrClosed.
func (i *Interpreter) Run(ctx context.Context, out io.Writer, vars map[string]int64) (*domain.Frame, error) {
	if i.table.Destroyed() {
		return nil, ErrClosed
	}
	frame, err := i.engine.Run(ctx, out, vars)
	return frame, i.wrapClosed(err)
}

// Program returns the loaded program.
func (i *Interpreter) Program() *domain.Program {
	return i.engine.Program()
}

// Hooks returns the annotation table for direct use with package hook.
func (i *Interpreter) Hooks() *runtime.Table {
	return i.table
}

// IdleFrame returns the frame passed to hook installers and destructors outside a run.
func (i *Interpreter) IdleFrame() *domain.Frame {
	return i.engine.IdleFrame()
}

// Node returns the node with the given ID.
func (i *Interpreter) Node(id string) (*domain.Node, error) {
	n := i.Program().Lookup(id)
	if n == nil {
		return nil, fmt.Errorf("%q: %w", id, domain.ErrNodeNotFound)
	}
	return n, nil
}

// Install installs a hook of the given kind on a node, replacing any previous hook.
func (i *Interpreter) Install(id string, kind hook.Kind) error {
	n, err := i.Node(id)
	if err != nil {
		return err
	}
	return i.wrapClosed(hook.Install(i.engine.IdleFrame(), i.table, n, kind, i.logger))
}

// Count installs a counting hook on a node and returns its counter.
func (i *Interpreter) Count(id string) (*hook.Counter, error) {
	n, err := i.Node(id)
	if err != nil {
		return nil, err
	}
	c, err := hook.Count(i.engine.IdleFrame(), i.table, n)
	return c, i.wrapClosed(err)
}

// Remove uninstalls the hook on a node. It reports whether a hook was present.
func (i *Interpreter) Remove(id string) (bool, error) {
	n, err := i.Node(id)
	if err != nil {
		return false, err
	}
	removed, err := hook.Remove(i.engine.IdleFrame(), i.table, n)
	return removed, i.wrapClosed(err)
}

// Hooked describes the installed hooks, ordered by node ID.
func (i *Interpreter) Hooked() []hook.Info {
	var infos []hook.Info
	for n, a := range i.table.All() {
		infos = append(infos, hook.Describe(n, a))
	}
	sort.Slice(infos, func(a, b int) bool {
		return infos[a].NodeID < infos[b].NodeID
	})
	return infos
}

// Close releases every installed hook. The Interpreter cannot be used afterwards.
func (i *Interpreter) Close() error {
	return i.wrapClosed(i.table.Destroy(i.engine.IdleFrame()))
}

func (i *Interpreter) wrapClosed(err error) error {
	if errors.Is(err, annotation.ErrGroupDestroyed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}
