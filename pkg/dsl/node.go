package dsl

import "github.com/aretw0/annotate/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Set assigns value to variable.
func (n *NodeBuilder) Set(variable string, value int64) *NodeBuilder {
	n.node.Op = domain.OpSet
	n.node.Var = variable
	n.node.Value = value
	return n
}

// Add adds delta to variable.
func (n *NodeBuilder) Add(variable string, delta int64) *NodeBuilder {
	n.node.Op = domain.OpAdd
	n.node.Var = variable
	n.node.Value = delta
	return n
}

// Print writes the value of variable.
func (n *NodeBuilder) Print(variable string) *NodeBuilder {
	n.node.Op = domain.OpPrint
	n.node.Var = variable
	n.node.Text = ""
	return n
}

// Text writes a fixed line.
func (n *NodeBuilder) Text(text string) *NodeBuilder {
	n.node.Op = domain.OpPrint
	n.node.Text = text
	return n
}

// JumpNonZero continues at target while variable is non-zero.
func (n *NodeBuilder) JumpNonZero(variable, target string) *NodeBuilder {
	n.node.Op = domain.OpJumpNonZero
	n.node.Var = variable
	n.node.TargetID = target
	return n
}

// Go sets the explicit successor of the node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.node.NextID = target
	return n
}

// Exec gives the node a custom routine instead of a built-in op.
func (n *NodeBuilder) Exec(op string, fn domain.ExecFunc) *NodeBuilder {
	n.node.Op = op
	n.node.Exec = fn
	return n
}

// Halt turns the node into a halt node, ending the run.
func (n *NodeBuilder) Halt() *NodeBuilder {
	n.node.Op = domain.OpHalt
	n.node.NextID = ""
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
