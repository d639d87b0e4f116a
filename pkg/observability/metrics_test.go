package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/dsl"
	"github.com/aretw0/cascade/pkg/observability"
)

func TestMetrics_CountTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	app := dsl.Root("AppState").Build()
	m := cascade.New(cascade.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, m.RegisterStateType(app))
	require.NoError(t, m.InitState(domain.Global(), app, "menu", true))

	ctx := context.Background()
	require.NoError(t, m.SetTarget(domain.Global(), app, "in_game"))
	_, err := m.RunTransitionCycle(ctx)
	require.NoError(t, err)

	exits := testutil.ToFloat64(metrics.Transitions().WithLabelValues("AppState", "exit"))
	enters := testutil.ToFloat64(metrics.Transitions().WithLabelValues("AppState", "enter"))
	assert.Equal(t, 1.0, exits)
	assert.Equal(t, 1.0, enters)
}

func TestMetrics_CountOverwrites(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	app := dsl.Root("AppState").Build()
	m := cascade.New(cascade.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, m.RegisterStateType(app))
	require.NoError(t, m.InitState(domain.Global(), app, "menu", true))

	require.NoError(t, m.SetTarget(domain.Global(), app, "settings"))
	require.NoError(t, m.SetTarget(domain.Global(), app, "in_game"))

	overwrites := testutil.ToFloat64(metrics.Overwrites().WithLabelValues("AppState"))
	assert.Equal(t, 1.0, overwrites)
}
