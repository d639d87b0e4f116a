package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/registry"
)

func noopUpdate(_ *domain.Slot, _ domain.Dependencies) domain.Decision {
	return domain.Unchanged()
}

func newState(name string, deps ...*domain.StateType) *domain.StateType {
	return &domain.StateType{Name: name, DependsOn: deps, Update: noopUpdate}
}

func TestRegister_AssignsRanks(t *testing.T) {
	a := newState("A")
	b := newState("B", a)
	c := newState("C", a, b)

	r := registry.New()
	require.NoError(t, r.Register(c))

	rank := func(st *domain.StateType) int {
		v, ok := r.Rank(st)
		require.True(t, ok)
		return v
	}
	assert.Equal(t, 0, rank(a))
	assert.Equal(t, 1, rank(b))
	assert.Equal(t, 2, rank(c))
	assert.Equal(t, 3, r.Len())
}

func TestRegister_DiamondTakesMaxPlusOne(t *testing.T) {
	root := newState("Root")
	left := newState("Left", root)
	right := newState("Right", root, left)
	leaf := newState("Leaf", left, right)

	r := registry.New()
	require.NoError(t, r.Register(leaf))

	rank := func(st *domain.StateType) int {
		v, _ := r.Rank(st)
		return v
	}
	assert.Equal(t, 0, rank(root))
	assert.Equal(t, 1, rank(left))
	assert.Equal(t, 2, rank(right))
	assert.Equal(t, 3, rank(leaf))
}

func TestRegister_OrderedAscendsByRank(t *testing.T) {
	a := newState("A")
	b := newState("B", a)
	c := newState("C", b)

	r := registry.New()
	require.NoError(t, r.Register(c))

	ordered := r.Ordered()
	require.Len(t, ordered, 3)
	assert.Same(t, a, ordered[0])
	assert.Same(t, b, ordered[1])
	assert.Same(t, c, ordered[2])
}

func TestRegister_Reregister(t *testing.T) {
	a := newState("A")
	r := registry.New()
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(a))
	assert.Equal(t, 1, r.Len())
}

func TestRegister_NameConflict(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(newState("A")))

	err := r.Register(newState("A"))
	assert.ErrorIs(t, err, domain.ErrStateNameConflict)
}

func TestRegister_NilUpdate(t *testing.T) {
	r := registry.New()
	err := r.Register(&domain.StateType{Name: "A"})
	assert.ErrorIs(t, err, domain.ErrNilUpdate)
}

func TestRegister_CycleDetection(t *testing.T) {
	a := newState("A")
	b := newState("B", a)
	c := newState("C", b)
	a.DependsOn = []*domain.StateType{c}

	r := registry.New()
	err := r.Register(a)
	require.Error(t, err)

	var cycleErr *domain.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"A", "C", "B", "A"}, cycleErr.Path)
	assert.Equal(t, "dependency cycle: A -> C -> B -> A", cycleErr.Error())
}

func TestRegister_SelfCycle(t *testing.T) {
	a := newState("A")
	a.DependsOn = []*domain.StateType{a}

	r := registry.New()
	var cycleErr *domain.CycleError
	require.ErrorAs(t, r.Register(a), &cycleErr)
	assert.Equal(t, []string{"A", "A"}, cycleErr.Path)
}

func TestClosure_DependenciesFirst(t *testing.T) {
	a := newState("A")
	b := newState("B", a)
	c := newState("C", b)

	r := registry.New()
	require.NoError(t, r.Register(c))

	closure := r.Closure(c)
	require.Len(t, closure, 3)
	assert.Same(t, a, closure[0])
	assert.Same(t, b, closure[1])
	assert.Same(t, c, closure[2])
}

func TestLookupAndInfo(t *testing.T) {
	a := newState("A")
	b := newState("B", a)

	r := registry.New()
	require.NoError(t, r.Register(b))

	got, ok := r.Lookup("B")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	info := r.Info()
	require.Len(t, info, 2)
	assert.Equal(t, domain.StateInfo{Name: "A", Rank: 0, DependsOn: []string{}}, info[0])
	assert.Equal(t, domain.StateInfo{Name: "B", Rank: 1, DependsOn: []string{"A"}}, info[1])
}
