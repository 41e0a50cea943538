package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nauticalab/propbind/internal/cli"
)

var (
	// Check command flags
	checkFiles      []string
	checkOverrides  []string
	checkConfigMaps []string
	checkDir        string
	checkStrict     bool
	checkKubeconfig string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration properties against a module",
	Long: `Validate configuration properties against a module.

Sources are merged in order, later sources winning: files, then ConfigMaps,
then --set overrides. Values may reference environment variables as
${ENV:NAME}.

Examples:
  propbind check -f server.properties
  propbind check -f base.yaml -f prod.yaml --set http.address=:9090 --strict
  propbind check --configmap prod/api-server --module http
  propbind check --dir ./environments`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.CheckOptions{
			Module:     module,
			Files:      checkFiles,
			Overrides:  checkOverrides,
			ConfigMaps: checkConfigMaps,
			Strict:     checkStrict,
			Verbose:    verbose,
			ServerURL:  serverURL,
			TokenPath:  tokenPath,
			Kubeconfig: checkKubeconfig,
		}

		var (
			ok  bool
			err error
		)
		if checkDir != "" {
			ok, err = cli.CheckDirRun(cmd.Context(), checkDir, opts)
		} else {
			ok, err = cli.CheckRun(cmd.Context(), opts)
		}
		if err != nil {
			return err
		}
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringArrayVarP(&checkFiles, "file", "f", nil, "Property file (.properties, .yaml, .yml); repeatable")
	checkCmd.Flags().StringArrayVar(&checkOverrides, "set", nil, "Override a property as key=value; repeatable")
	checkCmd.Flags().StringArrayVar(&checkConfigMaps, "configmap", nil, "ConfigMap as namespace/name; repeatable")
	checkCmd.Flags().StringVar(&checkDir, "dir", "", "Check every property file under this directory separately")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Report properties no class uses as errors")
	checkCmd.Flags().StringVar(&checkKubeconfig, "kubeconfig", "", "Path to kubeconfig for --configmap")

	checkCmd.MarkFlagsMutuallyExclusive("dir", "file")
	checkCmd.MarkFlagsMutuallyExclusive("dir", "configmap")
}
