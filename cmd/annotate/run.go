package main

import (
	"context"

	"github.com/aretw0/annotate/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <program.yaml>",
	Short: "Run a program once with the requested hooks",
	Long: `Compiles the program, installs hooks from the config file and flags, runs it
and prints hook counts to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trace, _ := cmd.Flags().GetStringSlice("trace")
		count, _ := cmd.Flags().GetStringSlice("count")
		skip, _ := cmd.Flags().GetStringSlice("skip")
		vars, _ := cmd.Flags().GetStringArray("var")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Execute(ctx, cli.RunOptions{
			CommonOptions: commonOptions(cmd, args[0]),
			Trace:         trace,
			Count:         count,
			Skip:          skip,
			Vars:          vars,
			Stdout:        cmd.OutOrStdout(),
			Stderr:        cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("trace", nil, "Log every execution of these nodes")
	runCmd.Flags().StringSlice("count", nil, "Count executions of these nodes")
	runCmd.Flags().StringSlice("skip", nil, "Skip these nodes")
	runCmd.Flags().StringArray("var", nil, "Initial variable as name=value")
}
