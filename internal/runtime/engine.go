// Package runtime implements the Cascade transition engine: the per-owner
// slot store, the update evaluator, the three-phase transition scheduler and
// the notification dispatcher.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/registry"
)

// Engine owns the slot store and runs transition cycles.
//
// A cycle is logically single-threaded: the engine mutex serializes cycles
// against owner management and immediate target staging. Notification
// handlers run while the mutex is held, so they must use QueueTarget rather
// than SetTarget to stage follow-up transitions.
type Engine struct {
	registry *registry.Registry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks

	mu     sync.Mutex
	owners map[uuid.UUID]*ownerState
	global *ownerState

	queueMu sync.Mutex
	queued  []queuedTarget

	subs *dispatcher
}

type queuedTarget struct {
	ref   domain.OwnerRef
	typ   *domain.StateType
	value any
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine over a registry of state types.
func NewEngine(reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		owners:   make(map[uuid.UUID]*ownerState),
		subs:     newDispatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnExit subscribes a handler to exit notifications of one state type.
func (e *Engine) OnExit(st *domain.StateType, h domain.Handler) {
	e.subs.onExit(st, h)
}

// OnEnter subscribes a handler to enter notifications of one state type.
func (e *Engine) OnEnter(st *domain.StateType, h domain.Handler) {
	e.subs.onEnter(st, h)
}

// InitState ensures the slot (and its transitive dependency slots) exists on
// the owner and stages its initial value. With suppress the value is
// established silently; otherwise the next cycle emits the first activation
// as an enter notification. The global owner is created on first use.
func (e *Engine) InitState(ref domain.OwnerRef, st *domain.StateType, initial any, suppress bool) error {
	if initial == nil {
		return fmt.Errorf("init state %q: %w", st.Name, domain.ErrNilTargetValue)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.registry.Contains(st) {
		return fmt.Errorf("init state %q: %w", st.Name, domain.ErrUnknownState)
	}

	ow, err := e.ownerForInitLocked(ref)
	if err != nil {
		return err
	}
	e.ensureSlotsLocked(ow)

	slot := ow.slots[st]
	if slot.Enabled() {
		e.logger.Warn("state already initialized", "owner", ref.String(), "state", st.Name)
		return fmt.Errorf("state %q on owner %s: %w", st.Name, ref, domain.ErrStateAlreadyInitialized)
	}

	if suppress {
		slot.Populate(initial)
		e.logger.Debug("state populated silently", "owner", ref.String(), "state", st.Name)
	} else {
		slot.ScheduleInit(initial)
		e.logger.Debug("initial transition staged", "owner", ref.String(), "state", st.Name)
	}
	return nil
}

// SetTarget immediately stages a pending update on a slot, replacing any
// unconsumed previous target (last-write-wins). Must not be called from
// notification handlers; use QueueTarget there.
func (e *Engine) SetTarget(ref domain.OwnerRef, st *domain.StateType, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setTargetLocked(ref, st, value)
}

// QueueTarget defers staging to the start of the next cycle. Safe to call
// from notification handlers. Staging failures are logged, not returned.
func (e *Engine) QueueTarget(ref domain.OwnerRef, st *domain.StateType, value any) {
	e.queueMu.Lock()
	e.queued = append(e.queued, queuedTarget{ref: ref, typ: st, value: value})
	e.queueMu.Unlock()
}

func (e *Engine) setTargetLocked(ref domain.OwnerRef, st *domain.StateType, value any) error {
	ow, err := e.ownerLocked(ref)
	if err != nil {
		return err
	}
	slot, ok := ow.slots[st]
	if !ok {
		return fmt.Errorf("state %q not present on owner %s: %w", st.Name, ref, domain.ErrUnknownState)
	}
	stager, ok := slot.Target().(domain.ValueStager)
	if !ok {
		return fmt.Errorf("state %q: %w", st.Name, domain.ErrNoUpdateChannel)
	}
	if slot.Target().ShouldUpdate() {
		e.logger.Debug("overwriting unconsumed target", "owner", ref.String(), "state", st.Name)
		if e.hooks.OnTargetOverwrite != nil {
			e.hooks.OnTargetOverwrite(context.Background(), &domain.OverwriteEvent{Owner: ref, State: st.Name})
		}
	}
	return stager.Stage(value)
}

// applyQueuedLocked drains the deferred target queue. Called with the engine
// mutex held, before the update phase.
func (e *Engine) applyQueuedLocked() {
	e.queueMu.Lock()
	queued := e.queued
	e.queued = nil
	e.queueMu.Unlock()

	for _, q := range queued {
		if err := e.setTargetLocked(q.ref, q.typ, q.value); err != nil {
			e.logger.Warn("deferred target dropped", "owner", q.ref.String(), "state", q.typ.Name, "err", err)
		}
	}
}
