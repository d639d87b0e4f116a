package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/machinedef"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive session against a machine definition",
	Long: `Starts a REPL over the global owner. Commands:
  init <state> <value>   initialize a state silently
  set <state> <value>    stage a target for the next cycle
  off <state>            stage a disable (toggle targets only)
  cycle                  run one transition cycle
  show                   print the current snapshot
  quit                   exit`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if err := runSession(file, newLogger(cmd)); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSession(file string, logger *slog.Logger) error {
	def, types, err := machinedef.Load(file)
	if err != nil {
		return err
	}

	m := cascade.New(cascade.WithName(def.Machine), cascade.WithLogger(logger))
	for _, st := range types {
		if err := m.RegisterStateType(st); err != nil {
			return err
		}
		// Echo every transition as it happens.
		m.OnExit(st, func(_ context.Context, ev domain.TransitionEvent) {
			fmt.Printf("  exit  %s: %v\n", ev.State, ev.Previous)
		})
		m.OnEnter(st, func(_ context.Context, ev domain.TransitionEvent) {
			fmt.Printf("  enter %s: %v\n", ev.State, ev.Current)
		})
	}

	fmt.Printf("--- Cascade (%s) ---\n", def.Machine)

	ctx := context.Background()
	global := domain.Global()
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil

		case "init":
			if len(fields) != 3 {
				fmt.Println("usage: init <state> <value>")
				continue
			}
			st, ok := m.StateType(fields[1])
			if !ok {
				fmt.Printf("unknown state %q\n", fields[1])
				continue
			}
			if err := m.InitState(global, st, fields[2], true); err != nil {
				fmt.Printf("init failed: %v\n", err)
			}

		case "set":
			if len(fields) != 3 {
				fmt.Println("usage: set <state> <value>")
				continue
			}
			st, ok := m.StateType(fields[1])
			if !ok {
				fmt.Printf("unknown state %q\n", fields[1])
				continue
			}
			if err := m.SetTarget(global, st, fields[2]); err != nil {
				fmt.Printf("set failed: %v\n", err)
			}

		case "off":
			if len(fields) != 2 {
				fmt.Println("usage: off <state>")
				continue
			}
			st, ok := m.StateType(fields[1])
			if !ok {
				fmt.Printf("unknown state %q\n", fields[1])
				continue
			}
			if err := m.SetTarget(global, st, nil); err != nil {
				fmt.Printf("off failed: %v\n", err)
			}

		case "cycle":
			stats, err := m.RunTransitionCycle(ctx)
			if err != nil {
				fmt.Printf("cycle failed: %v\n", err)
				continue
			}
			fmt.Printf("  %d updated, %d exits, %d enters (%s)\n",
				stats.Updated, stats.Exits, stats.Enters, stats.Duration)

		case "show":
			if !m.HasOwner(global) {
				fmt.Println("  (no state initialized)")
				continue
			}
			snap, err := m.Snapshot(global)
			if err != nil {
				fmt.Printf("show failed: %v\n", err)
				continue
			}
			for _, info := range m.Inspect() {
				ss, ok := snap.States[info.Name]
				if !ok {
					fmt.Printf("  %-20s (disabled)\n", info.Name)
					continue
				}
				fmt.Printf("  %-20s %v (previous: %v)\n", info.Name, ss.Current, ss.Previous)
			}

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}
