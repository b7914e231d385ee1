// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/looplink/internal/app"
)

// StatusDependencies defines the interface for status reads.
type StatusDependencies interface {
	Status(ctx context.Context) service.Status
}

// StatusHandler handles service status requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Status(r.Context()))
}
