package main

import (
	"github.com/aretw0/annotate/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <program.yaml>",
	Short: "Export the program graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the program, highlighting hooked nodes.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hooks, _ := cmd.Flags().GetStringSlice("hook")
		return cli.Graph(cli.GraphOptions{
			ProgramPath: args[0],
			Hooks:       hooks,
			Out:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("hook", nil, "Nodes to highlight as hooked")
}
