package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stanza version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("stanza", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
