package domain

// Program is a linked tree of Nodes. It owns its Nodes.
type Program struct {
	Name  string
	Nodes []*Node
	Entry *Node

	index map[string]*Node
}

// NewProgram creates a Program over already linked nodes.
// The first node is the entry point.
func NewProgram(name string, nodes []*Node) *Program {
	p := &Program{
		Name:  name,
		Nodes: nodes,
		index: make(map[string]*Node, len(nodes)),
	}
	for _, n := range nodes {
		p.index[n.ID] = n
	}
	if len(nodes) > 0 {
		p.Entry = nodes[0]
	}
	return p
}

// Lookup returns the node with the given ID, or nil.
func (p *Program) Lookup(id string) *Node {
	return p.index[id]
}
