package runtime

import (
	"fmt"

	"github.com/aretw0/annotate/pkg/domain"
)

var ops = map[string]domain.ExecFunc{
	domain.OpSet:         execSet,
	domain.OpAdd:         execAdd,
	domain.OpPrint:       execPrint,
	domain.OpJumpNonZero: execJumpNonZero,
	domain.OpHalt:        execHalt,
	domain.OpNop:         execNop,
}

// Resolve returns the built-in implementation of op.
func Resolve(op string) (domain.ExecFunc, bool) {
	exec, ok := ops[op]
	return exec, ok
}

// Default executes f.Op with its built-in implementation, ignoring any annotation.
func Default(f *domain.Frame) (*domain.Node, error) {
	exec, ok := ops[f.Op.Op]
	if !ok {
		return nil, &UnknownOpError{NodeID: f.Op.ID, Op: f.Op.Op}
	}
	return exec(f)
}

func execSet(f *domain.Frame) (*domain.Node, error) {
	f.Vars[f.Op.Var] = f.Op.Value
	return f.Op.Next, nil
}

func execAdd(f *domain.Frame) (*domain.Node, error) {
	f.Vars[f.Op.Var] += f.Op.Value
	return f.Op.Next, nil
}

func execPrint(f *domain.Frame) (*domain.Node, error) {
	var err error
	if f.Op.Text != "" {
		_, err = fmt.Fprintln(f.Out, f.Op.Text)
	} else {
		_, err = fmt.Fprintln(f.Out, f.Vars[f.Op.Var])
	}
	if err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return f.Op.Next, nil
}

func execJumpNonZero(f *domain.Frame) (*domain.Node, error) {
	if f.Vars[f.Op.Var] != 0 {
		return f.Op.Target, nil
	}
	return f.Op.Next, nil
}

func execHalt(*domain.Frame) (*domain.Node, error) {
	return nil, nil
}

func execNop(f *domain.Frame) (*domain.Node, error) {
	return f.Op.Next, nil
}
