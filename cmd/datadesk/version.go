package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of datadesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "datadesk version %s\n", strings.TrimSpace(datadesk.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
