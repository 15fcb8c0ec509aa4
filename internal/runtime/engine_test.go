package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aretw0/annotate/internal/compiler"
	"github.com/aretw0/annotate/internal/runtime"
	"github.com/aretw0/annotate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countdown(t *testing.T) *domain.Program {
	t.Helper()
	prog, err := compiler.Link("countdown", []*domain.Node{
		{ID: "init", Op: domain.OpSet, Var: "n", Value: 3},
		{ID: "loop", Op: domain.OpPrint, Var: "n"},
		{ID: "dec", Op: domain.OpAdd, Var: "n", Value: -1},
		{ID: "again", Op: domain.OpJumpNonZero, Var: "n", TargetID: "loop"},
		{ID: "bye", Op: domain.OpPrint, Text: "liftoff"},
	})
	require.NoError(t, err)
	return prog
}

func TestEngine_Run(t *testing.T) {
	engine, err := runtime.NewEngine(countdown(t))
	require.NoError(t, err)

	var out bytes.Buffer
	frame, err := engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "3\n2\n1\nliftoff\n", out.String())
	assert.Equal(t, int64(0), frame.Vars["n"])
	assert.Equal(t, 11, frame.Steps)
	assert.Nil(t, frame.Op)
}

func TestEngine_AnnotationReplacesNode(t *testing.T) {
	prog := countdown(t)
	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	// Print twice as loud, then call through to the original.
	loop := prog.Lookup("loop")
	original := loop.Exec
	_, err = table.Set(engine.IdleFrame(), loop, nil, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		f.Out.Write([]byte("tick "))
		return original(f)
	}))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "tick 3\ntick 2\ntick 1\nliftoff\n", out.String())
}

func TestEngine_AnnotationWithoutRoutineIsIgnored(t *testing.T) {
	prog := countdown(t)
	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	_, err = table.Set(engine.IdleFrame(), prog.Lookup("loop"), "data only", nil)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "3\n2\n1\nliftoff\n", out.String())
}

func TestEngine_AnnotationCanRedirect(t *testing.T) {
	prog := countdown(t)
	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	// Skip straight to the end instead of looping.
	_, err = table.Set(engine.IdleFrame(), prog.Lookup("loop"), nil, nil, runtime.WithRoutine(func(f *domain.Frame) (*domain.Node, error) {
		return f.Program.Lookup("bye"), nil
	}))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "liftoff\n", out.String())
}

func TestEngine_RoutineError(t *testing.T) {
	prog := countdown(t)
	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = table.Set(engine.IdleFrame(), prog.Lookup("dec"), nil, nil, runtime.WithRoutine(func(*domain.Frame) (*domain.Node, error) {
		return nil, boom
	}))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), nil, nil)
	require.ErrorIs(t, err, boom)

	var execErr *runtime.ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "dec", execErr.NodeID)
	assert.True(t, execErr.Annotated)
}

func TestEngine_FreedAnnotationFallsBack(t *testing.T) {
	prog := countdown(t)
	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	a, err := table.Set(engine.IdleFrame(), prog.Lookup("loop"), nil, nil, runtime.WithRoutine(func(*domain.Frame) (*domain.Node, error) {
		return nil, errors.New("must not run")
	}))
	require.NoError(t, err)
	// Simulates a hook removed between lookup and execution.
	require.NoError(t, a.Free(engine.IdleFrame()))

	var out bytes.Buffer
	_, err = engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "3\n2\n1\nliftoff\n", out.String())
}

func TestEngine_StepLimit(t *testing.T) {
	prog, err := compiler.Link("spin", []*domain.Node{
		{ID: "forever", Op: domain.OpNop, NextID: "forever"},
	})
	require.NoError(t, err)

	engine, err := runtime.NewEngine(prog, runtime.WithMaxSteps(10))
	require.NoError(t, err)

	frame, err := engine.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, runtime.ErrStepLimit)
	assert.Equal(t, 10, frame.Steps)
}

func TestEngine_Cancelled(t *testing.T) {
	engine, err := runtime.NewEngine(countdown(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Run(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_UnknownOp(t *testing.T) {
	prog, err := compiler.Link("bad", []*domain.Node{{ID: "x", Op: "teleport"}})
	require.NoError(t, err)

	_, err = runtime.NewEngine(prog)
	var opErr *runtime.UnknownOpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "teleport", opErr.Op)
}

func TestEngine_Vars(t *testing.T) {
	prog, err := compiler.Link("echo", []*domain.Node{
		{ID: "show", Op: domain.OpPrint, Var: "x"},
	})
	require.NoError(t, err)
	engine, err := runtime.NewEngine(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = engine.Run(context.Background(), &out, map[string]int64{"x": 7})
	require.NoError(t, err)
	assert.Equal(t, "7\n", out.String())
}

func TestDefault(t *testing.T) {
	prog := countdown(t)
	f := domain.NewFrame(prog, nil, nil)

	next, err := runtime.Default(f)
	require.NoError(t, err)
	assert.Same(t, prog.Lookup("loop"), next)
	assert.Equal(t, int64(3), f.Vars["n"])
}
