// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	WorkoutDependencies
	MapDependencies
	StateDependencies
}

// Server wires HTTP routes for the tracker API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	workoutsHandler *WorkoutsHandler
	mapHandler      *MapHandler
	stateHandler    *StateHandler

	logger logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers. Without WithLogger
// the process-wide logger is used.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		workoutsHandler: NewWorkoutsHandler(deps),
		mapHandler:      NewMapHandler(deps),
		stateHandler:    NewStateHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, RequestIDMiddleware(s.logger, MetricsMiddleware(h, endpoint)))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	handle("GET /stats", "stats", s.statsHandler.HandleStats)
	handle("GET /api/state", "state", s.stateHandler.HandleGetState)

	handle("POST /api/geolocation", "geolocation", s.mapHandler.HandleGeolocation)
	handle("POST /api/clicks", "clicks", s.mapHandler.HandleClick)
	handle("POST /api/form/kind", "form_kind", s.mapHandler.HandleFormKind)

	handle("GET /api/workouts", "workouts", s.workoutsHandler.HandleList)
	handle("POST /api/workouts", "workouts", s.workoutsHandler.HandleCreate)
	handle("DELETE /api/workouts/{id}", "workout", s.workoutsHandler.HandleDelete)
	handle("POST /api/workouts/{id}/focus", "workout_focus", s.workoutsHandler.HandleFocus)
	handle("POST /api/sort", "sort", s.workoutsHandler.HandleSort)
	handle("POST /api/reset", "reset", s.workoutsHandler.HandleReset)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
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

// writeServiceError translates a service error into its HTTP status.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var ve *workout.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "validation_failed",
			Message: ve.Error(),
			Field:   ve.Field,
		})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrMapUnavailable):
		writeError(w, http.StatusConflict, "map_unavailable", Wrap(op, err))
	case errors.Is(err, service.ErrGeolocationUnavailable):
		writeError(w, http.StatusConflict, "geolocation_unavailable", Wrap(op, err))
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrTimeout),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// pointRequest is a map position; Error is set instead when the browser
// could not determine one.
type pointRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error,omitempty"`
}

func (p pointRequest) coordinates() (workout.Coordinates, error) {
	if p.Lat == nil || p.Lng == nil {
		return workout.Coordinates{}, errors.New("lat and lng are required")
	}
	return workout.Coordinates{Lat: *p.Lat, Lng: *p.Lng}, nil
}

// Workout mirrors the shape returned for workouts.
type Workout = types.Workout
