package dsl

import (
	"fmt"

	"github.com/aretw0/annotate/internal/compiler"
	"github.com/aretw0/annotate/pkg/domain"
)

// Builder manages the program construction.
type Builder struct {
	name  string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new program builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node at the end of the program.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID: id,
			Op: domain.OpNop,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build links the nodes into a Program.
// Each call produces fresh nodes, so programs built from the same builder never
// share node identities.
func (b *Builder) Build() (*domain.Program, error) {
	nodes := make([]*domain.Node, 0, len(b.order))
	for _, id := range b.order {
		n := b.nodes[id].node
		nodes = append(nodes, &n)
	}

	prog, err := compiler.Link(b.name, nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to build program: %w", err)
	}
	return prog, nil
}
