/*
Package cascade is a hierarchical finite-state-machine engine. It propagates
state changes through a directed acyclic dependency graph of state "slots"
attached to owners and fires enter/exit notifications in a strict,
dependency-consistent order.

# Concept

Each state type declares a dependency set of other state types and an update
function. At registration time every state type receives an integer rank: a
dependency always has a strictly lower rank than its dependents, so the graph
is acyclic by construction. Slots live on owners: any number of local owners
(entities identified by UUID) plus at most one global owner.

A transition cycle runs three phases in strict sequence:

 1. Update: slots are evaluated in ascending rank order. A slot re-evaluates
    when its pending target requests it or when any dependency changed in the
    same cycle, so dependents always see post-update dependency state.
 2. Exit: exit notifications fire for changed slots, leaf to root.
 3. Enter: enter notifications fire for changed slots, root to leaf.

No observer ever sees a machine in a partially-updated arrangement: all
updates settle before the first notification fires.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/cascade"
		"github.com/aretw0/cascade/pkg/domain"
		"github.com/aretw0/cascade/pkg/dsl"
	)

	func main() {
		app := dsl.Root("AppState").Build()
		game := dsl.Sub("GameState", app).
			ActiveWhen(func(deps domain.Dependencies) bool {
				parent, _ := deps.Get("AppState")
				return parent.Current() == "in_game"
			}).
			WithDefault("running").
			Build()

		m := cascade.New()
		if err := m.RegisterStateType(game); err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		m.OnEnter(game, func(ctx context.Context, ev domain.TransitionEvent) {
			log.Printf("game entered: %v", ev.Current)
		})

		if err := m.InitState(domain.Global(), app, "menu", false); err != nil {
			log.Fatal(err)
		}
		if _, err := m.RunTransitionCycle(ctx); err != nil {
			log.Fatal(err)
		}

		// Switching the root state enables the substate on the next cycle.
		if err := m.SetTarget(domain.Global(), app, "in_game"); err != nil {
			log.Fatal(err)
		}
		if _, err := m.RunTransitionCycle(ctx); err != nil {
			log.Fatal(err)
		}
	}
*/
package cascade
