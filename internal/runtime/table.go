package runtime

import (
	"github.com/aretw0/annotate/pkg/annotation"
	"github.com/aretw0/annotate/pkg/domain"
)

// Table is the annotation side table consulted by the Engine, keyed by node identity.
type Table = annotation.Group[*domain.Node, *domain.Frame]

// Annotation is a single Table entry.
type Annotation = annotation.Annotation[*domain.Node, *domain.Frame]

// Routine is an annotation routine run in place of a node.
type Routine = annotation.Routine[*domain.Node, *domain.Frame]

// NewTable creates an empty Table.
func NewTable(opts ...annotation.GroupOption) *Table {
	return annotation.NewGroup[*domain.Node, *domain.Frame](opts...)
}

// WithRoutine assigns the routine of an annotation installed through Table.Set.
func WithRoutine(r Routine) annotation.SetOption[*domain.Node, *domain.Frame] {
	return annotation.WithRoutine(r)
}
