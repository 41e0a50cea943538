package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propbind-server",
	Short: "Serve configuration checks over HTTP",
	Long: `propbind-server validates property bags and Kubernetes ConfigMaps
against the modules it knows, for CI pipelines and admission tooling.

The server configures itself from the same kind of properties it checks.`,
	SilenceUsage: true,
}

// Version subcommand
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("propbind-server version %s\n", version)
		fmt.Printf("  Build time: %s\n", buildTime)
		fmt.Printf("  Git commit: %s\n", gitCommit)
		fmt.Printf("  Go version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
