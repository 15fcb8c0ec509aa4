package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/pkg/annotation"
	"github.com/aretw0/annotate/pkg/domain"
)

// DefaultMaxSteps bounds a run when no limit is configured.
const DefaultMaxSteps = 100000

// Engine executes a Program node by node.
// Before running a node it looks the node up in its annotation Table; an annotated
// node runs the annotation routine instead of its own.
type Engine struct {
	program  *domain.Program
	table    *Table
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithAnnotations sets the Table consulted before each node.
func WithAnnotations(t *Table) EngineOption {
	return func(e *Engine) {
		e.table = t
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps bounds the number of nodes a single run may execute.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine binds the program's nodes to their op implementations.
// Nodes that already carry an Exec keep it.
func NewEngine(program *domain.Program, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		program:  program,
		logger:   logging.NewNop(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, n := range program.Nodes {
		if n.Exec != nil {
			continue
		}
		exec, ok := Resolve(n.Op)
		if !ok {
			return nil, &UnknownOpError{NodeID: n.ID, Op: n.Op}
		}
		n.Exec = exec
	}
	return e, nil
}

// Program returns the program being executed.
func (e *Engine) Program() *domain.Program {
	return e.program
}

// Annotations returns the Table consulted by the engine, or nil.
func (e *Engine) Annotations() *Table {
	return e.table
}

// IdleFrame returns a Frame for use outside a run, such as installing or
// releasing annotations. Its Op is nil.
func (e *Engine) IdleFrame() *domain.Frame {
	f := domain.NewFrame(e.program, io.Discard, nil)
	f.Op = nil
	return f
}

// Run executes the program from its entry until a node returns no successor.
// The returned Frame reflects the final state even when an error is returned.
func (e *Engine) Run(ctx context.Context, out io.Writer, vars map[string]int64) (*domain.Frame, error) {
	f := domain.NewFrame(e.program, out, vars)
	e.logger.Debug("run started", "program", e.program.Name)

	for f.Op != nil {
		if err := ctx.Err(); err != nil {
			return f, err
		}
		if f.Steps >= e.maxSteps {
			return f, ErrStepLimit
		}

		next, err := e.Step(ctx, f)
		if err != nil {
			e.logger.Debug("run failed", "node", f.Op.ID, "err", err)
			return f, err
		}
		f.Op = next
	}

	e.logger.Debug("run finished", "program", e.program.Name, "steps", f.Steps)
	return f, nil
}

// Step executes f.Op once and returns its successor.
func (e *Engine) Step(ctx context.Context, f *domain.Frame) (*domain.Node, error) {
	node := f.Op
	a, err := e.lookup(node)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", node.ID, err)
	}
	annotated := a != nil

	e.emit(ctx, e.hooks.OnNodeEnter, domain.EventNodeEnter, node, annotated)

	var next *domain.Node
	if annotated {
		next, err = a.Run(f)
		if errors.Is(err, annotation.ErrAnnotationFreed) {
			// Removed between lookup and run.
			annotated = false
			next, err = node.Exec(f)
		}
	} else {
		next, err = node.Exec(f)
	}
	f.Steps++

	e.emit(ctx, e.hooks.OnNodeLeave, domain.EventNodeLeave, node, annotated)

	if err != nil {
		return nil, &ExecError{NodeID: node.ID, Annotated: annotated, Err: err}
	}
	return next, nil
}

// lookup returns the node's annotation when it carries a routine.
// A table destroyed mid-run yields ErrGroupDestroyed.
func (e *Engine) lookup(node *domain.Node) (*Annotation, error) {
	if e.table == nil {
		return nil, nil
	}
	a, ok, err := e.table.Lookup(node)
	if err != nil || !ok || a.Routine() == nil {
		return nil, err
	}
	return a, nil
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.NodeEvent), typ domain.EventType, node *domain.Node, annotated bool) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      typ,
		NodeID:    node.ID,
		Op:        node.Op,
		Annotated: annotated,
	})
}
