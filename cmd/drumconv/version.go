package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/drumconv"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of drumconv",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "drumconv version %s\n", strings.TrimSpace(drumconv.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
