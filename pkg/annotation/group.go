package annotation

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/aretw0/annotate/internal/logging"
	"github.com/google/uuid"
)

// Group owns the Annotations bound to the nodes of one unit of work
// (a compiled program, a hook installation).
// A Group holds at most one Annotation per node.
//
// All methods are safe for concurrent use. Destructors run while the Group is
// locked for writing and must not call back into the same Group.
type Group[K comparable, C any] struct {
	mu        sync.RWMutex
	entries   map[K]*Annotation[K, C]
	destroyed bool

	id     string
	logger *slog.Logger
	hooks  Hooks
}

// NewGroup creates an empty Group.
func NewGroup[K comparable, C any](opts ...GroupOption) *Group[K, C] {
	cfg := groupConfig{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	return &Group[K, C]{
		entries: make(map[K]*Annotation[K, C]),
		id:      cfg.id,
		logger:  cfg.logger.With("group", cfg.id),
		hooks:   cfg.hooks,
	}
}

// ID returns the group identifier.
func (g *Group[K, C]) ID() string {
	return g.id
}

// Set binds node to a new Annotation owning payload.
// An existing binding for node is destroyed (its destructor runs) before the new one
// becomes visible to Get. The returned Annotation is the one now installed.
//
// After Destroy, Set returns ErrGroupDestroyed and payload ownership stays with the caller.
func (g *Group[K, C]) Set(c C, node K, payload any, dtor Destructor[C], opts ...SetOption[K, C]) (*Annotation[K, C], error) {
	a := New[K, C](nil, payload, dtor)
	for _, opt := range opts {
		opt(a)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return nil, fmt.Errorf("set: %w", ErrGroupDestroyed)
	}

	if old, ok := g.entries[node]; ok {
		delete(g.entries, node)
		g.release(c, node, old, ReasonReplace)
	}
	g.entries[node] = a

	label := nodeLabel(node)
	g.logger.Debug("annotation set", "node", label)
	if g.hooks.OnSet != nil {
		g.hooks.OnSet(Event{GroupID: g.id, Node: label})
	}
	return a, nil
}

// Get returns the Annotation bound to node.
// The boolean is false when node has no binding.
//
// Get panics if the Group has been destroyed.
func (g *Group[K, C]) Get(node K) (*Annotation[K, C], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.destroyed {
		panic(fmt.Errorf("get: %w", ErrGroupDestroyed))
	}
	a, ok := g.entries[node]
	return a, ok
}

// Lookup is Get for callers that may race with Destroy: it reports
// ErrGroupDestroyed instead of panicking.
func (g *Group[K, C]) Lookup(node K) (*Annotation[K, C], bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.destroyed {
		return nil, false, fmt.Errorf("lookup: %w", ErrGroupDestroyed)
	}
	a, ok := g.entries[node]
	return a, ok, nil
}

// Delete removes the binding for node and destroys its Annotation.
// Deleting an unbound node is a no-op and reports false.
func (g *Group[K, C]) Delete(c C, node K) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return false, fmt.Errorf("delete: %w", ErrGroupDestroyed)
	}

	a, ok := g.entries[node]
	if !ok {
		return false, nil
	}
	delete(g.entries, node)
	g.release(c, node, a, ReasonDelete)
	return true, nil
}

// DeleteAnnotation removes whichever binding holds a.
// An Annotation not owned by this Group is a no-op and reports false.
func (g *Group[K, C]) DeleteAnnotation(c C, a *Annotation[K, C]) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return false, fmt.Errorf("delete: %w", ErrGroupDestroyed)
	}

	for node, cur := range g.entries {
		if cur == a {
			delete(g.entries, node)
			g.release(c, node, cur, ReasonDelete)
			return true, nil
		}
	}
	return false, nil
}

// Destroy releases every remaining Annotation and invalidates the Group.
// Destructors run after the table is detached, so they may safely observe the Group
// (every operation then reports ErrGroupDestroyed). A panicking destructor does not
// prevent the remaining Annotations from being released; Destroy re-panics afterwards.
// A second call returns ErrGroupDestroyed.
func (g *Group[K, C]) Destroy(c C) error {
	g.mu.Lock()
	if g.destroyed {
		g.mu.Unlock()
		return fmt.Errorf("destroy: %w", ErrGroupDestroyed)
	}
	entries := g.entries
	g.entries = nil
	g.destroyed = true
	g.mu.Unlock()

	g.releaseAll(c, entries)
	g.logger.Debug("annotation group destroyed", "released", len(entries))
	return nil
}

// releaseAll releases every entry even if a destructor panics.
// The first panic is re-raised once all entries have been visited.
func (g *Group[K, C]) releaseAll(c C, entries map[K]*Annotation[K, C]) {
	var first any
	for node, a := range entries {
		func() {
			defer func() {
				if r := recover(); r != nil && first == nil {
					first = r
				}
			}()
			g.release(c, node, a, ReasonDestroy)
		}()
	}
	if first != nil {
		panic(first)
	}
}

// Destroyed reports whether Destroy has been called.
func (g *Group[K, C]) Destroyed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.destroyed
}

// Len returns the number of live bindings. It is zero after Destroy.
func (g *Group[K, C]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// All iterates over a snapshot of the current bindings in no particular order.
// It yields nothing after Destroy.
func (g *Group[K, C]) All() iter.Seq2[K, *Annotation[K, C]] {
	return func(yield func(K, *Annotation[K, C]) bool) {
		g.mu.RLock()
		snapshot := make(map[K]*Annotation[K, C], len(g.entries))
		for node, a := range g.entries {
			snapshot[node] = a
		}
		g.mu.RUnlock()

		for node, a := range snapshot {
			if !yield(node, a) {
				return
			}
		}
	}
}

// release frees a detached Annotation and reports it.
func (g *Group[K, C]) release(c C, node K, a *Annotation[K, C], reason Reason) {
	label := nodeLabel(node)
	if err := a.Free(c); err != nil {
		// The caller freed an Annotation the Group still owned.
		// The binding still ends here.
		g.logger.Warn("annotation released twice", "node", label, "reason", reason, "err", err)
	} else {
		g.logger.Debug("annotation released", "node", label, "reason", reason)
	}
	if g.hooks.OnRelease != nil {
		g.hooks.OnRelease(Event{GroupID: g.id, Node: label, Reason: reason})
	}
}
