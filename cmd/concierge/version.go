package main

import (
	"fmt"

	"github.com/aretw0/concierge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of concierge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "concierge version %s\n", concierge.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
