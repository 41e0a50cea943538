package main

import (
	"github.com/spf13/cobra"

	"github.com/nauticalab/propbind/internal/cli"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "List the properties of a module",
	Long: `List every property of a module with its type, default value and
notes. Defaults of secret properties are redacted.

Examples:
  propbind describe
  propbind describe --module auth -v`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.DescribeRun(cmd.Context(), cli.CheckOptions{
			Module:    module,
			Verbose:   verbose,
			ServerURL: serverURL,
			TokenPath: tokenPath,
		})
	},
}
