// Package mapview keeps the state of the map widget the page renders with
// Leaflet: one map, its markers and the last requested view. The page
// polls Snapshot and applies it; clicks travel the other way via Click.
package mapview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/metrics"
)

// ClickHandler receives map clicks.
type ClickHandler func(ctx context.Context, at workout.Coordinates) error

type marker struct {
	at    workout.Coordinates
	popup string
}

// Widget is an in-process model of the map widget. Safe for concurrent use.
type Widget struct {
	mu          sync.RWMutex
	handle      string
	view        *types.View
	markers     map[string]marker
	order       []string
	revision    uint64
	onClick     []ClickHandler
	panDuration time.Duration
	newHandle   func() string
}

// New returns a widget with no map.
func New(opts ...Option) *Widget {
	w := &Widget{
		markers:     make(map[string]marker),
		panDuration: time.Second,
		newHandle:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateMap opens a map centred on center. Any previous map and its
// markers are discarded.
func (w *Widget) CreateMap(_ context.Context, center workout.Coordinates, zoom int) (string, error) {
	if !center.Valid() {
		return "", fmt.Errorf("%w: %+v", ErrInvalidPoint, center)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handle = w.newHandle()
	w.markers = make(map[string]marker)
	w.order = nil
	w.setViewLocked(center, zoom, false)
	metrics.UpdateMarkerCount(0)
	return w.handle, nil
}

// DestroyMap drops the map and everything on it.
func (w *Widget) DestroyMap(_ context.Context, mapID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(mapID); err != nil {
		return err
	}
	w.handle = ""
	w.view = nil
	w.markers = make(map[string]marker)
	w.order = nil
	w.revision++
	metrics.UpdateMarkerCount(0)
	return nil
}

// AddMarker places a marker with popup at the given point.
func (w *Widget) AddMarker(_ context.Context, mapID string, at workout.Coordinates, popup string) (string, error) {
	if !at.Valid() {
		return "", fmt.Errorf("%w: %+v", ErrInvalidPoint, at)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(mapID); err != nil {
		return "", err
	}
	id := w.newHandle()
	w.markers[id] = marker{at: at, popup: popup}
	w.order = append(w.order, id)
	w.revision++
	metrics.UpdateMarkerCount(len(w.markers))
	return id, nil
}

// RemoveMarker takes a marker off the map.
func (w *Widget) RemoveMarker(_ context.Context, mapID, markerID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(mapID); err != nil {
		return err
	}
	if _, ok := w.markers[markerID]; !ok {
		return ErrUnknownMarker
	}
	delete(w.markers, markerID)
	for i, id := range w.order {
		if id == markerID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.revision++
	metrics.UpdateMarkerCount(len(w.markers))
	return nil
}

// SetView moves the viewport. Animated moves pan over the configured duration.
func (w *Widget) SetView(_ context.Context, mapID string, at workout.Coordinates, zoom int, animate bool) error {
	if !at.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidPoint, at)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(mapID); err != nil {
		return err
	}
	w.setViewLocked(at, zoom, animate)
	return nil
}

// OnClick subscribes h to map clicks.
func (w *Widget) OnClick(h ClickHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClick = append(w.onClick, h)
}

// Click delivers a click at the given point to the subscribers. Clicks on
// a map that was never opened are rejected. The first handler error stops
// delivery.
func (w *Widget) Click(ctx context.Context, at workout.Coordinates) error {
	if !at.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidPoint, at)
	}
	w.mu.RLock()
	ready := w.handle != ""
	handlers := append([]ClickHandler(nil), w.onClick...)
	w.mu.RUnlock()

	if !ready {
		return ErrNoMap
	}
	for _, h := range handlers {
		if err := h(ctx, at); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current widget state.
func (w *Widget) Snapshot() types.Map {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := types.Map{
		Ready:   w.handle != "",
		Markers: make([]types.Marker, 0, len(w.order)),
	}
	if w.view != nil {
		v := *w.view
		out.View = &v
	}
	for _, id := range w.order {
		m := w.markers[id]
		out.Markers = append(out.Markers, types.Marker{
			Handle: id,
			Coords: types.Point{Lat: m.at.Lat, Lng: m.at.Lng},
			Popup:  m.popup,
		})
	}
	return out
}

func (w *Widget) checkLocked(mapID string) error {
	if w.handle == "" {
		return ErrNoMap
	}
	if mapID != w.handle {
		return ErrUnknownMap
	}
	return nil
}

func (w *Widget) setViewLocked(at workout.Coordinates, zoom int, animate bool) {
	w.revision++
	v := &types.View{
		Center:   types.Point{Lat: at.Lat, Lng: at.Lng},
		Zoom:     zoom,
		Animate:  animate,
		Revision: w.revision,
	}
	if animate {
		v.PanSeconds = w.panDuration.Seconds()
	}
	w.view = v
}
