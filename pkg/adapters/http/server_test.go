package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade"
	cascadehttp "github.com/aretw0/cascade/pkg/adapters/http"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/dsl"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	app := dsl.Root("AppState").Build()
	game := dsl.Sub("GameState", app).
		ActiveWhen(func(deps domain.Dependencies) bool {
			parent, _ := deps.Get("AppState")
			return parent.Current() == "in_game"
		}).
		WithDefault("running").
		Build()

	m := cascade.New(cascade.WithName("test"))
	require.NoError(t, m.RegisterStateType(game))
	require.NoError(t, m.InitState(domain.Global(), app, "menu", true))

	return cascadehttp.NewHandler(m)
}

func TestGetHealth(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetStates(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/states", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var states []domain.StateInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
	require.Len(t, states, 2)
	assert.Equal(t, "AppState", states[0].Name)
	assert.Equal(t, 0, states[0].Rank)
	assert.Equal(t, "GameState", states[1].Name)
	assert.Equal(t, 1, states[1].Rank)
	assert.Equal(t, []string{"AppState"}, states[1].DependsOn)
}

func TestGetOwners(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/owners", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var owners []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owners))
	assert.Equal(t, []string{"global"}, owners)
}

func TestGetOwner_Snapshot(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/owners/global", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "global", snap.Owner)
	assert.Equal(t, "menu", snap.States["AppState"].Current)
}

func TestGetOwner_Errors(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/owners/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/owners/0b38e0b1-03a3-4e98-9a59-6ac0abeecc33", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostTargetAndCycle(t *testing.T) {
	handler := newTestHandler(t)

	body := bytes.NewBufferString(`{"value":"in_game"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/owners/global/targets/AppState", body))
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/cycle", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.CycleStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Updated)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/owners/global", nil))
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "in_game", snap.States["AppState"].Current)
	assert.Equal(t, "running", snap.States["GameState"].Current)
}

func TestPostTarget_Errors(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"value":"x"}`)
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/owners/global/targets/Nope", body))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A replace target rejects a staged nil value.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"value":null}`)
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/owners/global/targets/AppState", body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
