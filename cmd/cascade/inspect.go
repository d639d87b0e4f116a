package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/machinedef"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the state graph with ranks and dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if err := runInspect(file); err != nil {
			fmt.Printf("Inspect failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(file string) error {
	def, types, err := machinedef.Load(file)
	if err != nil {
		return err
	}

	m := cascade.New(cascade.WithName(def.Machine))
	for _, st := range types {
		if err := m.RegisterStateType(st); err != nil {
			return err
		}
	}

	fmt.Printf("Machine: %s\n", def.Machine)
	for _, info := range m.Inspect() {
		deps := "-"
		if len(info.DependsOn) > 0 {
			deps = strings.Join(info.DependsOn, ", ")
		}
		fmt.Printf("  [rank %d] %-20s depends on: %s\n", info.Rank, info.Name, deps)
	}
	return nil
}
