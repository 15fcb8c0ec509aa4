package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/internal/runtime"
	"github.com/aretw0/annotate/pkg/domain"
)

// Kind names a built-in hook.
type Kind string

const (
	KindTrace   Kind = "trace"
	KindCount   Kind = "count"
	KindSkip    Kind = "skip"
	KindReplace Kind = "replace"
)

// ParseKind validates a hook kind name. Replace hooks need a routine and cannot be
// installed by name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindTrace, KindCount, KindSkip:
		return k, nil
	}
	return "", fmt.Errorf("unknown hook kind: %q", s)
}

// Counter is the payload of a count hook.
type Counter struct {
	n        atomic.Int64
	released atomic.Bool
}

// Load returns the number of executions seen so far.
func (c *Counter) Load() int64 {
	return c.n.Load()
}

// Released reports whether the hook owning the counter has been removed.
func (c *Counter) Released() bool {
	return c.released.Load()
}

// Release marks the counter as released. It is called by the owning table.
func (c *Counter) Release(*domain.Frame) {
	c.released.Store(true)
}

// Tracer is the payload of a trace hook.
type Tracer struct {
	logger *slog.Logger
	nodeID string
}

// Release logs the removal of the trace.
func (t *Tracer) Release(*domain.Frame) {
	t.logger.Debug("trace removed", "node", t.nodeID)
}

// skipped marks skip hooks so Describe can tell them from replace hooks.
type skipped struct{}

// ErrUnbound is returned when a node has no routine to call through to yet.
var ErrUnbound = errors.New("node has no bound routine")

func originalOf(node *domain.Node) (domain.ExecFunc, error) {
	if node.Exec == nil {
		return nil, fmt.Errorf("%s: %w", node.ID, ErrUnbound)
	}
	return node.Exec, nil
}

// Count installs a hook counting executions of node, calling through to its
// original routine.
func Count(f *domain.Frame, t *runtime.Table, node *domain.Node) (*Counter, error) {
	original, err := originalOf(node)
	if err != nil {
		return nil, err
	}
	c := &Counter{}
	_, err = t.Set(f, node, c, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		c.n.Add(1)
		return original(f)
	}))
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", node.ID, err)
	}
	return c, nil
}

// Trace installs a hook logging each execution of node with the frame variables,
// calling through to its original routine.
func Trace(f *domain.Frame, t *runtime.Table, node *domain.Node, logger *slog.Logger) error {
	original, err := originalOf(node)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	tr := &Tracer{logger: logger, nodeID: node.ID}
	_, err = t.Set(f, node, tr, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		tr.logger.Info("exec", "node", f.Op.ID, "op", f.Op.Op, "step", f.Steps, "vars", f.Vars)
		return original(f)
	}))
	if err != nil {
		return fmt.Errorf("trace %s: %w", node.ID, err)
	}
	return nil
}

// Skip installs a hook that bypasses node entirely and continues at its Next.
func Skip(f *domain.Frame, t *runtime.Table, node *domain.Node) error {
	_, err := t.Set(f, node, skipped{}, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		return f.Op.Next, nil
	}))
	if err != nil {
		return fmt.Errorf("skip %s: %w", node.ID, err)
	}
	return nil
}

// Replace installs fn in place of node. fn receives the node's original routine so it
// can call through.
func Replace(f *domain.Frame, t *runtime.Table, node *domain.Node, fn func(f *domain.Frame, original domain.ExecFunc) (*domain.Node, error)) error {
	original, err := originalOf(node)
	if err != nil {
		return err
	}
	_, err = t.Set(f, node, nil, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		return fn(f, original)
	}))
	if err != nil {
		return fmt.Errorf("replace %s: %w", node.ID, err)
	}
	return nil
}

// Install installs a hook by kind name.
func Install(f *domain.Frame, t *runtime.Table, node *domain.Node, kind Kind, logger *slog.Logger) error {
	switch kind {
	case KindTrace:
		return Trace(f, t, node, logger)
	case KindCount:
		_, err := Count(f, t, node)
		return err
	case KindSkip:
		return Skip(f, t, node)
	}
	return fmt.Errorf("install %s: unknown hook kind: %q", node.ID, kind)
}

// Remove uninstalls any hook on node. It reports whether a hook was present.
func Remove(f *domain.Frame, t *runtime.Table, node *domain.Node) (bool, error) {
	return t.Delete(f, node)
}

// Info describes an installed hook.
type Info struct {
	NodeID string `json:"node"`
	Kind   Kind   `json:"kind"`
	Count  *int64 `json:"count,omitempty"`
}

// Describe reports the kind of hook behind an annotation.
func Describe(node *domain.Node, a *runtime.Annotation) Info {
	info := Info{NodeID: node.ID}
	switch p := a.Payload().(type) {
	case *Counter:
		n := p.Load()
		info.Kind = KindCount
		info.Count = &n
	case *Tracer:
		info.Kind = KindTrace
	case skipped:
		info.Kind = KindSkip
	default:
		info.Kind = KindReplace
	}
	return info
}
