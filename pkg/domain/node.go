package domain

// Op constants define the behavior of a node.
const (
	// OpSet assigns Value to Var.
	OpSet = "set"
	// OpAdd adds Value to Var.
	OpAdd = "add"
	// OpPrint writes Text, or the value of Var when Text is empty.
	OpPrint = "print"
	// OpJumpNonZero continues at Target when Var is non-zero, otherwise at Next.
	OpJumpNonZero = "jnz"
	// OpHalt ends the run.
	OpHalt = "halt"
	// OpNop does nothing.
	OpNop = "nop"
)

// Node is a single executable step of a Program.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Op    string `json:"op" yaml:"op"`
	Var   string `json:"var,omitempty" yaml:"var,omitempty"`
	Value int64  `json:"value,omitempty" yaml:"value,omitempty"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`

	// NextID names the following node. Empty means the next node in program order.
	NextID string `json:"next,omitempty" yaml:"next,omitempty"`
	// TargetID names the branch destination of a jnz node.
	TargetID string `json:"target,omitempty" yaml:"target,omitempty"`

	// Resolved links, set when the program is linked.
	Next   *Node `json:"-" yaml:"-"`
	Target *Node `json:"-" yaml:"-"`

	// Exec is the node's own execution routine, bound by the runtime.
	Exec ExecFunc `json:"-" yaml:"-"`
}

// String returns the node ID.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}

// ExecFunc executes the node in f.Op and returns the node to run next.
// A nil node ends the run.
type ExecFunc func(f *Frame) (*Node, error)
