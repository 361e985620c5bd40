package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"teamplanner/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), buildinfo.Info())
		}
		info := buildinfo.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "planctl %s", info["version"])
		if info["commit"] != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s, built %s)", info["commit"], info["builtAt"])
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
