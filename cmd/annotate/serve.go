package main

import (
	"context"

	"github.com/aretw0/annotate/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <program.yaml>",
	Short: "Serve hook management and metrics over HTTP",
	Long: `Loads the program and exposes /hooks, /run, /graph and /metrics until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			CommonOptions: commonOptions(cmd, args[0]),
			Addr:          addr,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :2112)")
}
