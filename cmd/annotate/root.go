package main

import (
	"fmt"
	"os"

	"github.com/aretw0/annotate/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate runs small programs with hooks attached to their nodes",
	Long: `annotate loads a program, attaches trace, count or skip hooks to individual
nodes without changing the program, and runs it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("max-steps", 0, "Maximum nodes executed per run")
}

// commonOptions reads the persistent flags shared by program commands.
func commonOptions(cmd *cobra.Command, programPath string) cli.CommonOptions {
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	return cli.CommonOptions{
		ProgramPath: programPath,
		ConfigPath:  configPath,
		LogLevel:    level,
		MaxSteps:    maxSteps,
	}
}
