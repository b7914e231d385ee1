// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/looplink/internal/adapters/transport"
	service "github.com/okian/looplink/internal/app"
	"github.com/okian/looplink/internal/domain/model"
)

// OverrideDependencies defines the interface for override operations.
type OverrideDependencies interface {
	ListOverrides(ctx context.Context) ([]model.RemoteOverride, error)
	ActivateOverride(ctx context.Context, name string) error
	CancelOverride(ctx context.Context) error
}

// OverrideHandler handles override listing and command requests.
type OverrideHandler struct {
	deps OverrideDependencies
}

// NewOverrideHandler creates a new override handler.
func NewOverrideHandler(deps OverrideDependencies) *OverrideHandler {
	return &OverrideHandler{deps: deps}
}

// HandleList handles GET /overrides requests.
func (h *OverrideHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	overrides, err := h.deps.ListOverrides(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	if overrides == nil {
		overrides = []model.RemoteOverride{}
	}
	writeJSON(w, http.StatusOK, overrides)
}

// activateRequest mirrors the POST /override body.
type activateRequest struct {
	Name string `json:"name"`
}

// HandleCommand handles POST /override (activate) and DELETE /override
// (cancel) requests.
func (h *OverrideHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req activateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing name"))
			return
		}
		if err := h.deps.ActivateOverride(r.Context(), req.Name); err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "dispatched"})
	case http.MethodDelete:
		if err := h.deps.CancelOverride(r.Context()); err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "dispatched"})
	default:
		http.NotFound(w, r)
	}
}

// writeCommandError translates dispatch failures onto HTTP statuses.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	case errors.Is(err, service.ErrUnknownOverride):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, transport.ErrAuthenticationFailure):
		writeError(w, http.StatusForbidden, "authentication_failure", err)
	case errors.Is(err, transport.ErrInvalidURL), errors.Is(err, transport.ErrTransportFailure):
		writeError(w, http.StatusBadGateway, "transport_failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
