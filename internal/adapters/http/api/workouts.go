package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/workout"
)

// WorkoutDependencies defines the workout list operations.
type WorkoutDependencies interface {
	RecordWorkout(ctx context.Context, in service.Input) (Workout, error)
	RemoveWorkout(ctx context.Context, id string) error
	FocusWorkout(ctx context.Context, id string) error
	Workouts(ctx context.Context) ([]Workout, error)
	ToggleSort(ctx context.Context) (string, error)
	Reset(ctx context.Context) error
}

// WorkoutsHandler handles workout requests.
type WorkoutsHandler struct {
	deps WorkoutDependencies
}

// NewWorkoutsHandler creates a new workouts handler.
func NewWorkoutsHandler(deps WorkoutDependencies) *WorkoutsHandler {
	return &WorkoutsHandler{deps: deps}
}

// workoutRequest mirrors the OpenAPI schema for POST /api/workouts.
type workoutRequest struct {
	Type     string  `json:"type"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Cadence  float64 `json:"cadence"`
	ElevGain float64 `json:"elevGain"`
}

func (req workoutRequest) input() (service.Input, error) {
	kind, err := workout.ParseKind(req.Type)
	if err != nil {
		return service.Input{}, &workout.ValidationError{Field: "type", Reason: "must be running or cycling"}
	}
	return service.Input{
		Kind:          kind,
		Distance:      req.Distance,
		Duration:      req.Duration,
		Cadence:       req.Cadence,
		ElevationGain: req.ElevGain,
	}, nil
}

type workoutsResponse struct {
	Workouts []Workout `json:"workouts"`
	Count    int       `json:"count"`
}

type sortResponse struct {
	Sort string `json:"sort"`
}

// HandleCreate handles POST /api/workouts requests.
func (h *WorkoutsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_workout"
	var req workoutRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	created, err := h.deps.RecordWorkout(r.Context(), in)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/api/workouts/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /api/workouts requests.
func (h *WorkoutsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_workouts"
	ws, err := h.deps.Workouts(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if ws == nil {
		ws = []Workout{}
	}
	writeJSON(w, http.StatusOK, workoutsResponse{Workouts: ws, Count: len(ws)})
}

// HandleDelete handles DELETE /api/workouts/{id} requests.
func (h *WorkoutsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_workout"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.RemoveWorkout(r.Context(), id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFocus handles POST /api/workouts/{id}/focus requests.
func (h *WorkoutsHandler) HandleFocus(w http.ResponseWriter, r *http.Request) {
	const op = "api.focus_workout"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.FocusWorkout(r.Context(), id); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSort handles POST /api/sort requests.
func (h *WorkoutsHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	dir, err := h.deps.ToggleSort(r.Context())
	if err != nil {
		writeServiceError(w, "api.sort", err)
		return
	}
	writeJSON(w, http.StatusOK, sortResponse{Sort: dir})
}

// HandleReset handles POST /api/reset requests.
func (h *WorkoutsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reset(r.Context()); err != nil {
		writeServiceError(w, "api.reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
