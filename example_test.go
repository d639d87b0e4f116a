package cascade_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/dsl"
)

// ExampleNew demonstrates a minimal machine: one root state driven by staged
// targets, with an enter handler observing each transition.
func ExampleNew() {
	app := dsl.Root("AppState").Build()

	m := cascade.New()
	if err := m.RegisterStateType(app); err != nil {
		log.Fatal(err)
	}

	m.OnEnter(app, func(_ context.Context, ev domain.TransitionEvent) {
		fmt.Printf("entered %v\n", ev.Current)
	})

	ctx := context.Background()

	// Stage the initial value; the first cycle emits it as an enter.
	if err := m.InitState(domain.Global(), app, "menu", false); err != nil {
		log.Fatal(err)
	}
	if _, err := m.RunTransitionCycle(ctx); err != nil {
		log.Fatal(err)
	}

	if err := m.SetTarget(domain.Global(), app, "in_game"); err != nil {
		log.Fatal(err)
	}
	if _, err := m.RunTransitionCycle(ctx); err != nil {
		log.Fatal(err)
	}

	// Output:
	// entered menu
	// entered in_game
}
