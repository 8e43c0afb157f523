package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and host identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "chipprobe %s (%s)\n", ident.Version, ident.Hostname)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
