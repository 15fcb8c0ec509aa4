package runtime

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned when a run exceeds the configured step budget.
var ErrStepLimit = errors.New("step limit exceeded")

// UnknownOpError is returned when a node names an op with no implementation.
type UnknownOpError struct {
	NodeID string
	Op     string
}

func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("node %q: unknown op %q", e.NodeID, e.Op)
}

// ExecError wraps a failure raised while executing a node.
type ExecError struct {
	NodeID    string
	Annotated bool
	Err       error
}

func (e *ExecError) Error() string {
	if e.Annotated {
		return fmt.Sprintf("node %q (annotated): %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("node %q: %v", e.NodeID, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
