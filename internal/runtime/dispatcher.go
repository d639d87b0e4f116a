package runtime

import (
	"context"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
)

// dispatcher maps (state type, phase) to registered handler sets.
// Delivery order among handlers of one event is unspecified.
type dispatcher struct {
	mu    sync.RWMutex
	exit  map[*domain.StateType][]domain.Handler
	enter map[*domain.StateType][]domain.Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		exit:  make(map[*domain.StateType][]domain.Handler),
		enter: make(map[*domain.StateType][]domain.Handler),
	}
}

func (d *dispatcher) onExit(st *domain.StateType, h domain.Handler) {
	d.mu.Lock()
	d.exit[st] = append(d.exit[st], h)
	d.mu.Unlock()
}

func (d *dispatcher) onEnter(st *domain.StateType, h domain.Handler) {
	d.mu.Lock()
	d.enter[st] = append(d.enter[st], h)
	d.mu.Unlock()
}

func (d *dispatcher) dispatchExit(ctx context.Context, st *domain.StateType, ev domain.TransitionEvent) {
	d.mu.RLock()
	handlers := d.exit[st]
	d.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}

func (d *dispatcher) dispatchEnter(ctx context.Context, st *domain.StateType, ev domain.TransitionEvent) {
	d.mu.RLock()
	handlers := d.enter[st]
	d.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
