package handlers

import (
	"context"
	"net/http"
)

// Engine exposes the load state of a heavy inference backend.
type Engine interface {
	Name() string
	Loaded() bool
}

// Pinger reports reachability of the job store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	engines []Engine
	version string
}

func NewHealthHandler(store Pinger, version string, engines ...Engine) *HealthHandler {
	return &HealthHandler{store: store, engines: engines, version: version}
}

// Health reports process health, per-engine load state, and job store
// reachability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	modelsLoaded := make(map[string]bool, len(h.engines))
	for _, e := range h.engines {
		modelsLoaded[e.Name()] = e.Loaded()
	}

	redisConnected := false
	if h.store != nil {
		redisConnected = h.store.Ping(r.Context()) == nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"version":         h.version,
		"models_loaded":   modelsLoaded,
		"redis_connected": redisConnected,
	})
}
