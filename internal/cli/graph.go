package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/annotate/internal/compiler"
	"github.com/aretw0/annotate/internal/presentation/graph"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	ProgramPath string
	// Hooks lists nodes to highlight as annotated.
	Hooks []string
	Out   io.Writer
}

// Graph writes a Mermaid diagram of the program.
func Graph(opts GraphOptions) error {
	prog, err := compiler.NewParser().ParseFile(opts.ProgramPath)
	if err != nil {
		return err
	}
	for _, id := range opts.Hooks {
		if prog.Lookup(id) == nil {
			return fmt.Errorf("unknown node %q", id)
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	_, err = io.WriteString(opts.Out, graph.GenerateMermaid(prog, &graph.GraphOverlay{Annotated: opts.Hooks}))
	return err
}
