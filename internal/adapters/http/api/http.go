// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/looplink/internal/app"
	"github.com/okian/looplink/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Status exposes the shared slot snapshot.
	Status(ctx context.Context) service.Status

	// CurrentSchedule resolves every schedule at an instant.
	CurrentSchedule(ctx context.Context, at time.Time) (service.ScheduleSnapshot, error)

	// Override operations back the command endpoints.
	ListOverrides(ctx context.Context) ([]model.RemoteOverride, error)
	ActivateOverride(ctx context.Context, name string) error
	CancelOverride(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statusHandler   *StatusHandler
	scheduleHandler *ScheduleHandler
	overrideHandler *OverrideHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statusHandler:   NewStatusHandler(deps),
		scheduleHandler: NewScheduleHandler(deps),
		overrideHandler: NewOverrideHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/profile/current", MetricsMiddleware(s.scheduleHandler.HandleCurrent, "profile_current"))
	mux.HandleFunc("/overrides", MetricsMiddleware(s.overrideHandler.HandleList, "overrides"))
	mux.HandleFunc("/override", MetricsMiddleware(s.overrideHandler.HandleCommand, "override"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
