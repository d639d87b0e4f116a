package cascade

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/cascade/internal/runtime"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/registry"
)

// Machine is the high-level entry point for the Cascade library.
// It wraps the internal runtime and the state type registry and provides a
// simplified API for consumers.
type Machine struct {
	registry *registry.Registry
	runtime  *runtime.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	name     string
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithName labels the machine; the name is attached to every log record.
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// New initializes a new Cascade Machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		registry: registry.New(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if m.name != "" {
		m.logger = m.logger.With("machine", m.name)
	}

	m.runtime = runtime.NewEngine(
		m.registry,
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
	)
	return m
}

// RegisterStateType registers a state type and, transitively, all of its
// dependencies. Ranks are assigned here and never recomputed. A dependency
// cycle is a fatal registration error reporting the offending cycle.
func (m *Machine) RegisterStateType(st *domain.StateType) error {
	if err := m.registry.Register(st); err != nil {
		return err
	}
	m.logger.Debug("state type registered", "state", st.Name)
	return nil
}

// StateType resolves a registered state type by name.
func (m *Machine) StateType(name string) (*domain.StateType, bool) {
	return m.registry.Lookup(name)
}

// Inspect returns the registered state types with their ranks and
// dependencies, ascending by rank, for visualization or introspection tools.
func (m *Machine) Inspect() []domain.StateInfo {
	return m.registry.Info()
}

// CreateOwner registers a fresh local owner.
func (m *Machine) CreateOwner() domain.OwnerRef {
	return m.runtime.CreateOwner()
}

// CreateGlobalOwner creates the global owner. At most one may exist; a
// second attempt fails with domain.ErrGlobalOwnerExists.
func (m *Machine) CreateGlobalOwner() (domain.OwnerRef, error) {
	return m.runtime.CreateGlobalOwner()
}

// AdoptOwner registers a local owner under an existing identity.
func (m *Machine) AdoptOwner(ref domain.OwnerRef) error {
	return m.runtime.AdoptOwner(ref)
}

// DestroyOwner removes an owner and all of its slots.
func (m *Machine) DestroyOwner(ref domain.OwnerRef) error {
	return m.runtime.DestroyOwner(ref)
}

// HasOwner reports whether the owner exists.
func (m *Machine) HasOwner(ref domain.OwnerRef) bool {
	return m.runtime.HasOwner(ref)
}

// Owners lists all owners, the global owner first when it exists.
func (m *Machine) Owners() []domain.OwnerRef {
	return m.runtime.Owners()
}

// InitState creates the slot (plus all transitive dependency slots) on the
// owner and stages its initial value. With suppress the value is established
// silently; otherwise the next cycle emits the activation as an enter
// notification. Initializing the global owner creates it on first use.
func (m *Machine) InitState(ref domain.OwnerRef, st *domain.StateType, initial any, suppress bool) error {
	return m.runtime.InitState(ref, st, initial, suppress)
}

// SetTarget immediately stages a pending update, replacing any unconsumed
// previous target (last-write-wins). Not safe from notification handlers;
// use QueueTarget there.
func (m *Machine) SetTarget(ref domain.OwnerRef, st *domain.StateType, value any) error {
	return m.runtime.SetTarget(ref, st, value)
}

// QueueTarget defers staging to the start of the next transition cycle.
// Safe to call from notification handlers.
func (m *Machine) QueueTarget(ref domain.OwnerRef, st *domain.StateType, value any) {
	m.runtime.QueueTarget(ref, st, value)
}

// RunTransitionCycle runs one full update/exit/enter cycle across all
// owners and returns its statistics.
func (m *Machine) RunTransitionCycle(ctx context.Context) (domain.CycleStats, error) {
	return m.runtime.RunCycle(ctx)
}

// OnExit subscribes a handler to exit notifications of one state type.
// Handlers for global state receive a nil Owner.
func (m *Machine) OnExit(st *domain.StateType, h domain.Handler) {
	m.runtime.OnExit(st, h)
}

// OnEnter subscribes a handler to enter notifications of one state type.
func (m *Machine) OnEnter(st *domain.StateType, h domain.Handler) {
	m.runtime.OnEnter(st, h)
}

// Slot returns the slot record for (owner, state type). The slot must be
// treated as read-only; mutate it only through SetTarget and cycles.
func (m *Machine) Slot(ref domain.OwnerRef, st *domain.StateType) (*domain.Slot, bool) {
	return m.runtime.Slot(ref, st)
}

// Snapshot captures the populated slots of one owner for persistence.
func (m *Machine) Snapshot(ref domain.OwnerRef) (*domain.Snapshot, error) {
	return m.runtime.Snapshot(ref)
}

// Restore silently re-establishes an owner's slots from a snapshot.
func (m *Machine) Restore(ref domain.OwnerRef, snap *domain.Snapshot) error {
	return m.runtime.Restore(ref, snap)
}

// Name returns the configured machine label.
func (m *Machine) Name() string {
	return m.name
}
