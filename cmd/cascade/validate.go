package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/machinedef"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a machine definition for consistency",
	Long:  `Parses the definition, builds every state type and registers the full graph, reporting undefined dependencies, cycles and invalid guards.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if err := runValidate(file); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Machine definition is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(file string) error {
	def, types, err := machinedef.Load(file)
	if err != nil {
		return err
	}

	// Registration re-checks the graph (cycles, name conflicts) through the
	// same path the runtime uses.
	m := cascade.New(cascade.WithName(def.Machine))
	for _, st := range types {
		if err := m.RegisterStateType(st); err != nil {
			return fmt.Errorf("failed to register %s: %w", st.Name, err)
		}
	}

	return nil
}
