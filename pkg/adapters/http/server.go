// Package http exposes a Cascade machine over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/cascade/pkg/domain"
)

// Engine defines the interface for the Cascade state machine core.
type Engine interface {
	Inspect() []domain.StateInfo
	Owners() []domain.OwnerRef
	StateType(name string) (*domain.StateType, bool)
	Snapshot(ref domain.OwnerRef) (*domain.Snapshot, error)
	SetTarget(ref domain.OwnerRef, st *domain.StateType, value any) error
	RunTransitionCycle(ctx context.Context) (domain.CycleStats, error)
}

// Server serves the machine API.
type Server struct {
	Engine Engine
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine) http.Handler {
	server := &Server{Engine: engine}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/states", server.GetStates)
	r.Get("/owners", server.GetOwners)
	r.Get("/owners/{owner}", server.GetOwner)
	r.Post("/owners/{owner}/targets/{state}", server.PostTarget)
	r.Post("/cycle", server.PostCycle)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetStates handles the GET /states request.
func (s *Server) GetStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Inspect())
}

// GetOwners handles the GET /owners request.
func (s *Server) GetOwners(w http.ResponseWriter, r *http.Request) {
	refs := s.Engine.Owners()
	owners := make([]string, len(refs))
	for i, ref := range refs {
		owners[i] = ref.String()
	}
	writeJSON(w, owners)
}

// GetOwner handles the GET /owners/{owner} request, returning the owner's
// current snapshot.
func (s *Server) GetOwner(w http.ResponseWriter, r *http.Request) {
	ref, err := domain.ParseOwner(chi.URLParam(r, "owner"))
	if err != nil {
		http.Error(w, "Invalid owner id", http.StatusBadRequest)
		return
	}

	snap, err := s.Engine.Snapshot(ref)
	if err != nil {
		if errors.Is(err, domain.ErrOwnerNotFound) {
			http.Error(w, "Owner not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Snapshot error: %v", err), http.StatusInternalServerError)
		slog.Error("Snapshot failed", "error", err, "owner", ref.String())
		return
	}

	writeJSON(w, snap)
}

// TargetRequest is the body of POST /owners/{owner}/targets/{state}.
// A null value requests a disable on toggle-style states.
type TargetRequest struct {
	Value any `json:"value"`
}

// PostTarget handles the POST /owners/{owner}/targets/{state} request,
// staging a pending update for the next cycle.
func (s *Server) PostTarget(w http.ResponseWriter, r *http.Request) {
	ref, err := domain.ParseOwner(chi.URLParam(r, "owner"))
	if err != nil {
		http.Error(w, "Invalid owner id", http.StatusBadRequest)
		return
	}

	st, ok := s.Engine.StateType(chi.URLParam(r, "state"))
	if !ok {
		http.Error(w, "Unknown state type", http.StatusNotFound)
		return
	}

	var body TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("PostTarget: Invalid request body", "error", err)
		return
	}

	if err := s.Engine.SetTarget(ref, st, body.Value); err != nil {
		switch {
		case errors.Is(err, domain.ErrOwnerNotFound), errors.Is(err, domain.ErrUnknownState):
			http.Error(w, fmt.Sprintf("Target error: %v", err), http.StatusNotFound)
		case errors.Is(err, domain.ErrNoUpdateChannel), errors.Is(err, domain.ErrNilTargetValue):
			http.Error(w, fmt.Sprintf("Target error: %v", err), http.StatusUnprocessableEntity)
		default:
			http.Error(w, fmt.Sprintf("Target error: %v", err), http.StatusInternalServerError)
			slog.Error("SetTarget failed", "error", err, "owner", ref.String(), "state", st.Name)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// PostCycle handles the POST /cycle request, running one transition cycle.
func (s *Server) PostCycle(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Engine.RunTransitionCycle(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Cycle error: %v", err), http.StatusInternalServerError)
		slog.Error("Cycle failed", "error", err)
		return
	}

	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
