package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docsync/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the docsync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docsync %s", version.Version)
		if version.GitCommit != "" {
			fmt.Printf(" (%s)", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf(" built %s", version.BuildDate)
		}
		fmt.Println()
	},
}
