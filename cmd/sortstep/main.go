// Package main provides the entry point for the sortstep CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sortstep/internal/cli"
	"github.com/roach88/sortstep/internal/ir"
)

func main() {
	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sortstep %s (log format %s)\n", ir.EngineVersion, ir.LogVersion)
		},
	}
}
