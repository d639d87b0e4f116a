package main

import (
	"fmt"

	"github.com/aretw0/cascade"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the Cascade version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cascade.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
