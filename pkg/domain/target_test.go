package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade/pkg/domain"
)

func TestNoTarget(t *testing.T) {
	var target domain.Target = domain.NoTarget{}
	assert.False(t, target.ShouldUpdate())
	target.Reset()

	_, ok := target.(domain.ValueStager)
	assert.False(t, ok, "NoTarget must not accept staged values")
}

func TestReplaceTarget(t *testing.T) {
	target := domain.NewReplaceTarget().(*domain.ReplaceTarget)
	assert.False(t, target.ShouldUpdate())
	assert.Nil(t, target.Value())

	require.NoError(t, target.Stage("in_game"))
	assert.True(t, target.ShouldUpdate())
	assert.Equal(t, "in_game", target.Value())

	// Last write wins.
	require.NoError(t, target.Stage("settings"))
	assert.Equal(t, "settings", target.Value())

	target.Reset()
	assert.False(t, target.ShouldUpdate())
	assert.Nil(t, target.Value())
}

func TestReplaceTarget_RejectsNil(t *testing.T) {
	target := domain.NewReplaceTarget().(*domain.ReplaceTarget)
	err := target.Stage(nil)
	assert.ErrorIs(t, err, domain.ErrNilTargetValue)
	assert.False(t, target.ShouldUpdate())
}

func TestToggleTarget(t *testing.T) {
	target := domain.NewToggleTarget().(*domain.ToggleTarget)
	assert.False(t, target.ShouldUpdate())

	target.Enable("visible")
	assert.True(t, target.ShouldUpdate())
	assert.Equal(t, "visible", target.Value())

	target.Disable()
	assert.True(t, target.ShouldUpdate())
	assert.Nil(t, target.Value())

	target.Reset()
	assert.False(t, target.ShouldUpdate())
}

func TestToggleTarget_StageNilDisables(t *testing.T) {
	target := domain.NewToggleTarget().(*domain.ToggleTarget)
	require.NoError(t, target.Stage(nil))
	assert.True(t, target.ShouldUpdate())
	assert.Nil(t, target.Value())
}
