package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nauticalab/propbind/internal/cli"
	"github.com/nauticalab/propbind/internal/logging"
)

var (
	// Global flags (available to all commands)
	verbose   bool
	logLevel  string
	serverURL string
	tokenPath string
	module    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propbind",
	Short: "Check configuration properties before they reach a service",
	Long: `propbind binds flat key/value configuration to typed configuration
classes and reports every defunct, conflicting, deprecated, malformed or
invalid property at once.

Properties can come from .properties and YAML files, Kubernetes ConfigMaps
and --set overrides. Checks run locally, or on a propbind-server when
--server or PROPBIND_SERVER_URL is set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(os.Stderr, logLevel, "console")

		cfg, err := cli.LoadCLIConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("server") {
			serverURL = cfg.ServerURL
		}
		if !cmd.Flags().Changed("token-path") {
			tokenPath = cfg.TokenPath
		}
		if !cmd.Flags().Changed("module") {
			module = cfg.Module
		}
		return nil
	},
}

// Version subcommand
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("propbind version %s\n", version)

		if verbose {
			fmt.Printf("  Build time: %s\n", buildTime)
			fmt.Printf("  Git commit: %s\n", gitCommit)
			if serverURL != "" {
				fmt.Printf("  Server: %s\n", serverURL)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "propbind-server URL; checks run locally when empty")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-path", "", "File holding a bearer token for the server")
	rootCmd.PersistentFlags().StringVarP(&module, "module", "m", "server", "Module to check against")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(versionCmd)
}
