package hook_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/annotate/internal/compiler"
	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/internal/runtime"
	"github.com/aretw0/annotate/pkg/domain"
	"github.com/aretw0/annotate/pkg/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	prog   *domain.Program
	table  *runtime.Table
	engine *runtime.Engine
	idle   *domain.Frame
}

func setup(t *testing.T) *fixture {
	t.Helper()
	prog, err := compiler.Link("countdown", []*domain.Node{
		{ID: "init", Op: domain.OpSet, Var: "n", Value: 3},
		{ID: "loop", Op: domain.OpPrint, Var: "n"},
		{ID: "dec", Op: domain.OpAdd, Var: "n", Value: -1},
		{ID: "again", Op: domain.OpJumpNonZero, Var: "n", TargetID: "loop"},
	})
	require.NoError(t, err)

	table := runtime.NewTable()
	engine, err := runtime.NewEngine(prog, runtime.WithAnnotations(table))
	require.NoError(t, err)

	return &fixture{prog: prog, table: table, engine: engine, idle: engine.IdleFrame()}
}

func (fx *fixture) run(t *testing.T) string {
	t.Helper()
	var out bytes.Buffer
	_, err := fx.engine.Run(context.Background(), &out, nil)
	require.NoError(t, err)
	return out.String()
}

func TestCount(t *testing.T) {
	fx := setup(t)

	counter, err := hook.Count(fx.idle, fx.table, fx.prog.Lookup("loop"))
	require.NoError(t, err)

	assert.Equal(t, "3\n2\n1\n", fx.run(t), "count must call through")
	assert.Equal(t, int64(3), counter.Load())
	assert.False(t, counter.Released())

	removed, err := hook.Remove(fx.idle, fx.table, fx.prog.Lookup("loop"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, counter.Released())

	fx.run(t)
	assert.Equal(t, int64(3), counter.Load(), "removed hook must not count")
}

func TestCount_ReplaceReleasesPrevious(t *testing.T) {
	fx := setup(t)
	loop := fx.prog.Lookup("loop")

	first, err := hook.Count(fx.idle, fx.table, loop)
	require.NoError(t, err)
	second, err := hook.Count(fx.idle, fx.table, loop)
	require.NoError(t, err)

	assert.True(t, first.Released())
	assert.False(t, second.Released())

	fx.run(t)
	assert.Equal(t, int64(0), first.Load())
	assert.Equal(t, int64(3), second.Load())

	require.NoError(t, fx.table.Destroy(fx.idle))
	assert.True(t, second.Released())
}

func TestTrace(t *testing.T) {
	fx := setup(t)
	var logs bytes.Buffer
	logger := logging.NewWithWriter(&logs, slog.LevelDebug)

	require.NoError(t, hook.Trace(fx.idle, fx.table, fx.prog.Lookup("dec"), logger))

	assert.Equal(t, "3\n2\n1\n", fx.run(t))
	assert.Equal(t, 3, bytes.Count(logs.Bytes(), []byte("msg=exec")))
	assert.Contains(t, logs.String(), "node=dec")

	_, err := hook.Remove(fx.idle, fx.table, fx.prog.Lookup("dec"))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "trace removed")
}

func TestSkip(t *testing.T) {
	fx := setup(t)

	require.NoError(t, hook.Skip(fx.idle, fx.table, fx.prog.Lookup("loop")))
	assert.Empty(t, fx.run(t))
}

func TestReplace(t *testing.T) {
	fx := setup(t)

	err := hook.Replace(fx.idle, fx.table, fx.prog.Lookup("loop"), func(f *domain.Frame, original domain.ExecFunc) (*domain.Node, error) {
		f.Vars["n"] *= 10
		next, err := original(f)
		f.Vars["n"] /= 10
		return next, err
	})
	require.NoError(t, err)

	assert.Equal(t, "30\n20\n10\n", fx.run(t))
}

func TestInstallAndDescribe(t *testing.T) {
	fx := setup(t)
	kinds := map[string]hook.Kind{
		"init":  hook.KindTrace,
		"loop":  hook.KindCount,
		"again": hook.KindSkip,
	}
	for id, kind := range kinds {
		require.NoError(t, hook.Install(fx.idle, fx.table, fx.prog.Lookup(id), kind, nil))
	}

	fx.run(t)

	got := map[string]hook.Kind{}
	for node, a := range fx.table.All() {
		info := hook.Describe(node, a)
		got[info.NodeID] = info.Kind
		if info.Kind == hook.KindCount {
			require.NotNil(t, info.Count)
			assert.Equal(t, int64(1), *info.Count)
		}
	}
	assert.Equal(t, kinds, got)

	err := hook.Install(fx.idle, fx.table, fx.prog.Lookup("dec"), hook.KindReplace, nil)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := hook.ParseKind("count")
	require.NoError(t, err)
	assert.Equal(t, hook.KindCount, k)

	_, err = hook.ParseKind("replace")
	assert.Error(t, err)
}

func TestUnboundNode(t *testing.T) {
	table := runtime.NewTable()
	node := &domain.Node{ID: "loose", Op: domain.OpNop}

	_, err := hook.Count(nil, table, node)
	assert.ErrorIs(t, err, hook.ErrUnbound)
	assert.Equal(t, 0, table.Len())
}
