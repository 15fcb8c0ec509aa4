package annotation

import "log/slog"

type groupConfig struct {
	id     string
	logger *slog.Logger
	hooks  Hooks
}

// GroupOption configures a Group.
type GroupOption func(*groupConfig)

// WithID overrides the generated group identifier.
func WithID(id string) GroupOption {
	return func(c *groupConfig) {
		c.id = id
	}
}

// WithLogger sets a structured logger for group events.
func WithLogger(logger *slog.Logger) GroupOption {
	return func(c *groupConfig) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) GroupOption {
	return func(c *groupConfig) {
		c.hooks = hooks
	}
}

// SetOption configures an Annotation before it is published by Set.
type SetOption[K comparable, C any] func(*Annotation[K, C])

// WithRoutine assigns the alternate routine before the binding becomes visible.
func WithRoutine[K comparable, C any](r Routine[K, C]) SetOption[K, C] {
	return func(a *Annotation[K, C]) {
		a.SetRoutine(r)
	}
}
