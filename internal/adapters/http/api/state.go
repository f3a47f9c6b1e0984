package api

import (
	"context"
	"net/http"

	"github.com/okian/mapty/internal/domain/types"
)

// StateDependencies exposes the view snapshot.
type StateDependencies interface {
	State(ctx context.Context) (types.State, error)
}

// StateHandler serves the snapshot the page renders from.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleGetState handles GET /api/state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.State(r.Context())
	if err != nil {
		writeServiceError(w, "api.state", err)
		return
	}
	if st.Entries == nil {
		st.Entries = []types.Entry{}
	}
	if st.Map.Markers == nil {
		st.Map.Markers = []types.Marker{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, st)
}
