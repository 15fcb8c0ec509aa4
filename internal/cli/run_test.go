package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countdown = "testdata/countdown.yaml"

func TestExecute_CountsAndSkips(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		CommonOptions: CommonOptions{ProgramPath: countdown, LogLevel: "error"},
		Count:         []string{"loop"},
		Skip:          []string{"bye"},
		Stdout:        &stdout,
		Stderr:        &stderr,
	})
	require.NoError(t, err)

	assert.Equal(t, "3\n2\n1\n", stdout.String())
	assert.Equal(t, "loop: 3\n", stderr.String())
}

func TestExecute_ConfigHooksAndVars(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "annotate.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level = "error"

[[hook]]
node = "bye"
kind = "count"
`), 0o644))

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		CommonOptions: CommonOptions{ProgramPath: countdown, ConfigPath: cfgPath},
		// A flag hook on the same node replaces the configured one.
		Trace:  []string{"bye"},
		Count:  []string{"dec"},
		Vars:   []string{"extra=7"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	require.NoError(t, err)

	assert.Equal(t, "3\n2\n1\nliftoff\n", stdout.String())
	assert.Equal(t, "dec: 3\n", stderr.String())
}

func TestExecute_StepLimit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		CommonOptions: CommonOptions{ProgramPath: countdown, LogLevel: "error", MaxSteps: 3},
		Stdout:        &stdout,
		Stderr:        &stderr,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step limit")
}

func TestExecute_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := Execute(ctx, RunOptions{
		CommonOptions: CommonOptions{ProgramPath: countdown, LogLevel: "error"},
		Stdout:        &stdout,
		Stderr:        &stderr,
	})
	assert.NoError(t, err)
	assert.Empty(t, stdout.String())
}

func TestExecute_BadInput(t *testing.T) {
	tests := []struct {
		name string
		opts RunOptions
		want string
	}{
		{"unknown node", RunOptions{CommonOptions: CommonOptions{ProgramPath: countdown}, Count: []string{"nowhere"}}, "nowhere"},
		{"bad var", RunOptions{CommonOptions: CommonOptions{ProgramPath: countdown}, Vars: []string{"novalue"}}, "name=value"},
		{"bad level", RunOptions{CommonOptions: CommonOptions{ProgramPath: countdown, LogLevel: "loud"}}, "log level"},
		{"missing program", RunOptions{CommonOptions: CommonOptions{ProgramPath: "testdata/missing.yaml"}}, "missing.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink bytes.Buffer
			tt.opts.Stdout = &sink
			tt.opts.Stderr = &sink
			err := Execute(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"n=3", " m = -2 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"n": 3, "m": -2}, vars)

	_, err = parseVars([]string{"=1"})
	assert.Error(t, err)
	_, err = parseVars([]string{"n=abc"})
	assert.Error(t, err)
}

func TestGraph(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Graph(GraphOptions{ProgramPath: countdown, Hooks: []string{"dec"}, Out: &out}))

	assert.True(t, strings.HasPrefix(out.String(), "graph TD"))
	assert.Contains(t, out.String(), "class dec annotated;")

	err := Graph(GraphOptions{ProgramPath: countdown, Hooks: []string{"nowhere"}, Out: &out})
	assert.Error(t, err)
}
