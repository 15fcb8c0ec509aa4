package domain

import "io"

// Frame is the ambient execution context of a single run.
// Routines read the node being executed from Op; Op is nil outside a run.
type Frame struct {
	Program *Program
	Op      *Node
	Vars    map[string]int64
	Out     io.Writer
	Steps   int
}

// NewFrame creates a Frame positioned at the program entry.
// A nil out discards output.
func NewFrame(p *Program, out io.Writer, vars map[string]int64) *Frame {
	if out == nil {
		out = io.Discard
	}
	f := &Frame{
		Program: p,
		Op:      p.Entry,
		Vars:    make(map[string]int64, len(vars)),
		Out:     out,
	}
	for k, v := range vars {
		f.Vars[k] = v
	}
	return f
}
