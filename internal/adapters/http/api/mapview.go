package api

import (
	"context"
	"net/http"

	"github.com/okian/mapty/internal/domain/workout"
)

// MapDependencies defines the map and form operations.
type MapDependencies interface {
	LoadMap(ctx context.Context, center workout.Coordinates) error
	GeolocationFailed(ctx context.Context, reason string) error
	Click(ctx context.Context, at workout.Coordinates) error
	SwitchKind(ctx context.Context, k workout.Kind) error
}

// MapHandler handles geolocation, map clicks and the form kind selector.
type MapHandler struct {
	deps MapDependencies
}

// NewMapHandler creates a new map handler.
func NewMapHandler(deps MapDependencies) *MapHandler {
	return &MapHandler{deps: deps}
}

type kindRequest struct {
	Type string `json:"type"`
}

// HandleGeolocation handles POST /api/geolocation requests. The body is
// either the user's position or the browser's error message.
func (h *MapHandler) HandleGeolocation(w http.ResponseWriter, r *http.Request) {
	const op = "api.geolocation"
	var req pointRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Error != "" {
		writeServiceError(w, op, h.deps.GeolocationFailed(r.Context(), req.Error))
		return
	}
	center, err := req.coordinates()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.LoadMap(r.Context(), center); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClick handles POST /api/clicks requests.
func (h *MapHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	const op = "api.click"
	var req pointRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	at, err := req.coordinates()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Click(r.Context(), at); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFormKind handles POST /api/form/kind requests.
func (h *MapHandler) HandleFormKind(w http.ResponseWriter, r *http.Request) {
	const op = "api.form_kind"
	var req kindRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := workout.ParseKind(req.Type)
	if err != nil {
		writeServiceError(w, op, &workout.ValidationError{Field: "type", Reason: "must be running or cycling"})
		return
	}
	if err := h.deps.SwitchKind(r.Context(), kind); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
