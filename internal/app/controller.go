package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/okian/mapty/internal/adapters/repository"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

const defaultZoom = 13

// Sort directions reported by SortDirection.
const (
	SortNone = "none"
	SortDesc = "desc"
	SortAsc  = "asc"
)

// Input is what the form submits. Coordinates come from the last map click.
type Input struct {
	Kind          workout.Kind
	Distance      float64
	Duration      float64
	Cadence       float64
	ElevationGain float64
}

// Controller owns the workout list and keeps the map, the list view, the
// form and storage in step with it. It is not safe for concurrent use;
// Service runs every call on a single goroutine.
type Controller struct {
	mapw  MapWidget
	store Storage
	list  ListView
	form  Form

	ids    *workout.IDGenerator
	now    func() time.Time
	zoom   int
	logger logger.Logger

	workouts []workout.Workout
	markers  map[string]string // workout id -> marker handle
	pending  *workout.Coordinates
	mapID    string
	sort     string
	kind     workout.Kind

	count atomic.Int64
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithZoom sets the zoom used when opening the map and focusing workouts.
func WithZoom(zoom int) ControllerOption {
	return func(c *Controller) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithControllerClock replaces time.Now.
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController wires a controller to its collaborators.
func NewController(mapw MapWidget, store Storage, list ListView, form Form, opts ...ControllerOption) *Controller {
	c := &Controller{
		mapw:    mapw,
		store:   store,
		list:    list,
		form:    form,
		ids:     workout.NewIDGenerator(),
		now:     time.Now,
		zoom:    defaultZoom,
		markers: make(map[string]string),
		sort:    SortNone,
		kind:    workout.KindRunning,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("controller")
	}
	return c
}

// RecordNewWorkout builds a workout at the pending location. Invalid input
// returns a *workout.ValidationError and changes nothing.
func (c *Controller) RecordNewWorkout(ctx context.Context, in Input) (workout.Workout, error) {
	now := c.now()
	w, err := workout.New(workout.Params{
		ID:            c.nextID(now),
		Date:          now,
		Kind:          in.Kind,
		Coords:        c.pending,
		Distance:      in.Distance,
		Duration:      in.Duration,
		Cadence:       in.Cadence,
		ElevationGain: in.ElevationGain,
	})
	if err != nil {
		var ve *workout.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationError(ve.Field)
		}
		return workout.Workout{}, err
	}

	c.workouts = append(c.workouts, w)
	c.placeMarker(ctx, w)
	if err := c.list.Append(ctx, w); err != nil {
		c.logger.Error(ctx, "render entry failed", logger.String("id", w.ID), logger.Error(err))
	}
	c.resetForm(ctx)
	c.pending = nil
	c.persist(ctx)

	c.updateCount()
	metrics.RecordWorkoutRecorded(string(w.Kind))
	c.logger.Info(ctx, "workout recorded",
		logger.String("id", w.ID),
		logger.String("type", string(w.Kind)),
		logger.Float64("distance", w.Distance),
		logger.Float64("duration", w.Duration),
	)
	return w, nil
}

// RemoveWorkout deletes the workout with the given id everywhere.
func (c *Controller) RemoveWorkout(ctx context.Context, id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.workouts = slices.Delete(c.workouts, i, i+1)

	if handle, ok := c.markers[id]; ok {
		if c.mapID != "" {
			if err := c.mapw.RemoveMarker(ctx, c.mapID, handle); err != nil {
				c.logger.Warn(ctx, "remove marker failed", logger.String("id", id), logger.Error(err))
			}
		}
		delete(c.markers, id)
	}
	if err := c.list.Remove(ctx, id); err != nil {
		c.logger.Warn(ctx, "remove entry failed", logger.String("id", id), logger.Error(err))
	}
	c.persist(ctx)

	c.updateCount()
	metrics.RecordWorkoutRemoved()
	c.logger.Info(ctx, "workout removed", logger.String("id", id))
	return nil
}

// ToggleSort orders the list by distance, descending on the first call
// and alternating afterwards. Only the list view is re-rendered.
func (c *Controller) ToggleSort(ctx context.Context) string {
	if c.sort == SortDesc {
		c.sort = SortAsc
		slices.SortStableFunc(c.workouts, func(a, b workout.Workout) int { return cmp.Compare(a.Distance, b.Distance) })
	} else {
		c.sort = SortDesc
		slices.SortStableFunc(c.workouts, func(a, b workout.Workout) int { return cmp.Compare(b.Distance, a.Distance) })
	}
	if err := c.list.Replace(ctx, c.workouts); err != nil {
		c.logger.Error(ctx, "re-render list failed", logger.Error(err))
	}
	metrics.RecordAction("sort_" + c.sort)
	return c.sort
}

// FocusWorkout pans the map to the workout.
func (c *Controller) FocusWorkout(ctx context.Context, id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if c.mapID == "" {
		return ErrMapUnavailable
	}
	if err := c.mapw.SetView(ctx, c.mapID, c.workouts[i].Coords, c.zoom, true); err != nil {
		return fmt.Errorf("focus %s: %w", id, err)
	}
	metrics.RecordAction("focus")
	return nil
}

// ResetAll wipes storage and returns to the state of a fresh page: no
// workouts, no map, hidden form.
func (c *Controller) ResetAll(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		metrics.RecordPersistenceError("clear")
		return fmt.Errorf("clear storage: %w", err)
	}
	if c.mapID != "" {
		if err := c.mapw.DestroyMap(ctx, c.mapID); err != nil {
			c.logger.Warn(ctx, "destroy map failed", logger.Error(err))
		}
	}
	if err := c.list.Clear(ctx); err != nil {
		c.logger.Warn(ctx, "clear list failed", logger.Error(err))
	}
	c.resetForm(ctx)
	if err := c.form.SetKind(ctx, workout.KindRunning); err != nil {
		c.logger.Warn(ctx, "reset form kind failed", logger.Error(err))
	}

	c.workouts = nil
	c.markers = make(map[string]string)
	c.pending = nil
	c.mapID = ""
	c.sort = SortNone
	c.kind = workout.KindRunning

	c.updateCount()
	metrics.RecordAction("reset")
	c.logger.Info(ctx, "all workouts cleared")
	return nil
}

// RestoreFromPersistence loads the saved list. Missing or unreadable data
// leaves the list empty.
func (c *Controller) RestoreFromPersistence(ctx context.Context) {
	data, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordRestore("empty")
		return
	case err != nil:
		metrics.RecordRestore("error")
		metrics.RecordPersistenceError("load")
		c.logger.Warn(ctx, "load stored workouts failed", logger.Error(err))
		return
	}

	ws, err := workout.DecodeList(data)
	if err != nil {
		metrics.RecordRestore("corrupt")
		c.logger.Warn(ctx, "stored workouts unreadable, starting empty", logger.Error(err))
		return
	}

	c.workouts = ws
	if err := c.list.Replace(ctx, c.workouts); err != nil {
		c.logger.Error(ctx, "render restored list failed", logger.Error(err))
	}
	for _, w := range c.workouts {
		c.placeMarker(ctx, w)
	}

	c.updateCount()
	metrics.RecordRestore("ok")
	c.logger.Info(ctx, "workouts restored", logger.Int("count", len(ws)))
}

// LoadMap opens the map at center and marks every known workout. A map
// that is already open is replaced.
func (c *Controller) LoadMap(ctx context.Context, center workout.Coordinates) error {
	if !center.Valid() {
		return &workout.ValidationError{Field: "coords", Reason: "not a valid geographic point"}
	}
	if c.mapID != "" {
		if err := c.mapw.DestroyMap(ctx, c.mapID); err != nil {
			c.logger.Warn(ctx, "destroy map failed", logger.Error(err))
		}
		c.mapID = ""
	}

	id, err := c.mapw.CreateMap(ctx, center, c.zoom)
	if err != nil {
		metrics.RecordGeolocation("map_error")
		return fmt.Errorf("%w: %w", ErrMapUnavailable, err)
	}
	c.mapID = id
	c.markers = make(map[string]string, len(c.workouts))
	for _, w := range c.workouts {
		c.placeMarker(ctx, w)
	}

	metrics.RecordGeolocation("ok")
	c.logger.Info(ctx, "map loaded",
		logger.Float64("lat", center.Lat),
		logger.Float64("lng", center.Lng),
		logger.Int("markers", len(c.markers)),
	)
	return nil
}

// GeolocationFailed records that the position could not be obtained. The
// map stays closed.
func (c *Controller) GeolocationFailed(ctx context.Context, reason string) error {
	metrics.RecordGeolocation("unavailable")
	c.logger.Warn(ctx, "geolocation unavailable", logger.String("reason", reason))
	if reason == "" {
		return ErrGeolocationUnavailable
	}
	return fmt.Errorf("%w: %s", ErrGeolocationUnavailable, reason)
}

// HandleMapClick remembers the clicked point and opens the form. The last
// click wins.
func (c *Controller) HandleMapClick(ctx context.Context, at workout.Coordinates) error {
	if c.mapID == "" {
		return ErrMapUnavailable
	}
	if !at.Valid() {
		return &workout.ValidationError{Field: "coords", Reason: "not a valid geographic point"}
	}
	c.pending = &at
	if err := c.form.Show(ctx); err != nil {
		return fmt.Errorf("show form: %w", err)
	}
	metrics.RecordAction("click")
	return nil
}

// SwitchKind changes which kind-specific field the form shows.
func (c *Controller) SwitchKind(ctx context.Context, k workout.Kind) error {
	kind, err := workout.ParseKind(string(k))
	if err != nil {
		return &workout.ValidationError{Field: "type", Reason: "must be running or cycling"}
	}
	c.kind = kind
	if err := c.form.SetKind(ctx, kind); err != nil {
		return fmt.Errorf("switch form kind: %w", err)
	}
	return nil
}

// Workouts returns a copy of the list in its current order.
func (c *Controller) Workouts(_ context.Context) []workout.Workout {
	return slices.Clone(c.workouts)
}

// Pending returns the last clicked point, or nil.
func (c *Controller) Pending() *workout.Coordinates {
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// MapReady reports whether the map is open.
func (c *Controller) MapReady() bool { return c.mapID != "" }

// SortDirection returns SortNone, SortDesc or SortAsc.
func (c *Controller) SortDirection() string { return c.sort }

// Kind returns the kind selected on the form.
func (c *Controller) Kind() workout.Kind { return c.kind }

// Count returns the number of workouts. Safe to call from any goroutine.
func (c *Controller) Count() int { return int(c.count.Load()) }

// nextID skips ids still held by a workout. Ids wrap every ~27.8 hours, so
// a restored workout can carry the value the clock produces today.
func (c *Controller) nextID(now time.Time) string {
	for {
		id := c.ids.Next(now)
		if c.index(id) < 0 {
			return id
		}
	}
}

func (c *Controller) index(id string) int {
	return slices.IndexFunc(c.workouts, func(w workout.Workout) bool { return w.ID == id })
}

func (c *Controller) placeMarker(ctx context.Context, w workout.Workout) {
	if c.mapID == "" {
		return
	}
	handle, err := c.mapw.AddMarker(ctx, c.mapID, w.Coords, workout.PopupContent(w))
	if err != nil {
		c.logger.Warn(ctx, "add marker failed", logger.String("id", w.ID), logger.Error(err))
		return
	}
	c.markers[w.ID] = handle
}

func (c *Controller) resetForm(ctx context.Context) {
	if err := c.form.Clear(ctx); err != nil {
		c.logger.Warn(ctx, "clear form failed", logger.Error(err))
	}
	if err := c.form.Hide(ctx); err != nil {
		c.logger.Warn(ctx, "hide form failed", logger.Error(err))
	}
}

func (c *Controller) persist(ctx context.Context) {
	data, err := workout.EncodeList(c.workouts)
	if err == nil {
		err = c.store.Save(ctx, data)
	}
	if err != nil {
		metrics.RecordPersistenceError("save")
		c.logger.Error(ctx, "persist workouts failed", logger.Error(err))
	}
}

func (c *Controller) updateCount() {
	c.count.Store(int64(len(c.workouts)))
	metrics.UpdateTotalWorkouts(len(c.workouts))
}
