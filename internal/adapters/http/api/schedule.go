// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/looplink/internal/app"
)

// ScheduleDependencies defines the interface for schedule reads.
type ScheduleDependencies interface {
	CurrentSchedule(ctx context.Context, at time.Time) (service.ScheduleSnapshot, error)
}

// ScheduleHandler handles current-schedule requests.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandleCurrent handles GET /profile/current requests. An optional "at"
// query parameter (RFC3339) resolves the schedules at a different instant;
// the default is now.
func (h *ScheduleHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid at; must be RFC3339"))
			return
		}
		at = parsed
	}

	snap, err := h.deps.CurrentSchedule(r.Context(), at)
	if err != nil {
		if errors.Is(err, service.ErrNotStarted) {
			writeError(w, http.StatusServiceUnavailable, "not_started", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
