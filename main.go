package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transport-net",
		Short: "Transit network builder and simulator",
		Long: `transport-net runs the transit network simulation.

Players place stations, connect them with lines and earn revenue as trains
run. The server exposes persistence and live sessions over HTTP; scenarios
replay scripted sessions from YAML files.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}
