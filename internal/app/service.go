// Package service runs the workout controller behind a single-goroutine
// event loop and exposes it to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mapty/internal/adapters/mapview"
	eventqueue "github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/internal/adapters/mq/worker"
	"github.com/okian/mapty/internal/adapters/render"
	"github.com/okian/mapty/internal/adapters/repository"
	"github.com/okian/mapty/internal/domain/model"
	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 1024
	defaultEventTimeout    = 5 * time.Second
	defaultPanDuration     = time.Second
	dispatcherStopDeadline = 5 * time.Second
)

// Service owns the controller and its collaborators. Every operation is
// queued as an event and applied by one dispatcher goroutine.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	widget *mapview.Widget
	list   *render.List
	form   *render.Form
	store  Storage
	ctrl   *Controller

	// Event loop
	queue      *eventqueue.InMemoryQueue
	dispatcher *worker.Dispatcher
	cancel     context.CancelFunc

	// Configuration
	queueSize    int
	eventTimeout time.Duration
	zoom         int
	panDuration  time.Duration
	clock        func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum number of pending events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithEventTimeout bounds how long a caller waits for its event.
func WithEventTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.eventTimeout = d
		}
	}
}

// WithStorage sets where the workout list is persisted.
func WithStorage(store Storage) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMapZoom sets the zoom for the initial view and for focusing.
func WithMapZoom(zoom int) Option {
	return func(s *Service) {
		if zoom > 0 {
			s.zoom = zoom
		}
	}
}

// WithPanDuration sets how long the animated focus pan takes.
func WithPanDuration(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.panDuration = d
		}
	}
}

// WithClock replaces time.Now for workout timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service. Without WithStorage the list lives in memory.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:    defaultQueueSize,
		eventTimeout: defaultEventTimeout,
		zoom:         defaultZoom,
		panDuration:  defaultPanDuration,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.widget = mapview.New(mapview.WithPanDuration(s.panDuration))
	s.list = render.NewList()
	s.form = render.NewForm()
	s.ctrl = NewController(s.widget, s.store, s.list, s.form,
		WithZoom(s.zoom),
		WithControllerClock(s.clock),
		WithControllerLogger(s.logger.Named("controller")),
	)
	s.widget.OnClick(func(ctx context.Context, at workout.Coordinates) error {
		return s.do(ctx, "map_click", func(ctx context.Context) error {
			return s.ctrl.HandleMapClick(ctx, at)
		})
	})
	return s
}

// Start launches the event loop and restores the stored workouts.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	s.logger.Info(ctx, "starting workout service...")

	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.dispatcher = worker.NewDispatcher(s.queue, worker.WithLogger(s.logger.Named("dispatcher")))

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.dispatcher.Run(loopCtx)

	s.started = true
	s.mu.Unlock()

	if err := s.do(ctx, "restore", func(ctx context.Context) error {
		s.ctrl.RestoreFromPersistence(ctx)
		return nil
	}); err != nil {
		return fmt.Errorf("restore workouts: %w", err)
	}

	s.logger.Info(ctx, "workout service started",
		logger.Int("queueSize", s.queueSize),
		logger.Duration("eventTimeout", s.eventTimeout),
		logger.Int("workouts", s.ctrl.Count()),
	)
	return nil
}

// Stop applies the events already queued and shuts the loop down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping workout service...")

	_ = s.queue.Close()
	select {
	case <-s.dispatcher.Done():
	case <-time.After(dispatcherStopDeadline):
	}
	stopCtx, cancel := context.WithTimeout(ctx, dispatcherStopDeadline)
	defer cancel()
	if err := s.dispatcher.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "dispatcher shutdown", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "workout service stopped")
}

// RecordWorkout records a workout at the last clicked point.
func (s *Service) RecordWorkout(ctx context.Context, in Input) (types.Workout, error) {
	var w workout.Workout
	err := s.do(ctx, "record_workout", func(ctx context.Context) error {
		var err error
		w, err = s.ctrl.RecordNewWorkout(ctx, in)
		return err
	})
	if err != nil {
		return types.Workout{}, err
	}
	return render.Workout(w), nil
}

// RemoveWorkout deletes a workout by id.
func (s *Service) RemoveWorkout(ctx context.Context, id string) error {
	return s.do(ctx, "remove_workout", func(ctx context.Context) error {
		return s.ctrl.RemoveWorkout(ctx, id)
	})
}

// FocusWorkout pans the map to a workout.
func (s *Service) FocusWorkout(ctx context.Context, id string) error {
	return s.do(ctx, "focus_workout", func(ctx context.Context) error {
		return s.ctrl.FocusWorkout(ctx, id)
	})
}

// ToggleSort flips the distance sort and returns the new direction.
func (s *Service) ToggleSort(ctx context.Context) (string, error) {
	var dir string
	err := s.do(ctx, "toggle_sort", func(ctx context.Context) error {
		dir = s.ctrl.ToggleSort(ctx)
		return nil
	})
	return dir, err
}

// Reset removes every workout and closes the map.
func (s *Service) Reset(ctx context.Context) error {
	return s.do(ctx, "reset", s.ctrl.ResetAll)
}

// LoadMap opens the map at the user's position.
func (s *Service) LoadMap(ctx context.Context, center workout.Coordinates) error {
	return s.do(ctx, "load_map", func(ctx context.Context) error {
		return s.ctrl.LoadMap(ctx, center)
	})
}

// GeolocationFailed reports that the browser could not locate the user.
func (s *Service) GeolocationFailed(ctx context.Context, reason string) error {
	return s.do(ctx, "geolocation_failed", func(ctx context.Context) error {
		return s.ctrl.GeolocationFailed(ctx, reason)
	})
}

// Click forwards a map click to the widget, which delivers it back to the
// controller.
func (s *Service) Click(ctx context.Context, at workout.Coordinates) error {
	if !at.Valid() {
		return &workout.ValidationError{Field: "coords", Reason: "not a valid geographic point"}
	}
	err := s.widget.Click(ctx, at)
	if errors.Is(err, mapview.ErrNoMap) {
		return ErrMapUnavailable
	}
	return err
}

// SwitchKind changes the form's workout kind.
func (s *Service) SwitchKind(ctx context.Context, k workout.Kind) error {
	return s.do(ctx, "switch_kind", func(ctx context.Context) error {
		return s.ctrl.SwitchKind(ctx, k)
	})
}

// Workouts returns the list in its current order.
func (s *Service) Workouts(ctx context.Context) ([]types.Workout, error) {
	var ws []workout.Workout
	err := s.do(ctx, "list_workouts", func(ctx context.Context) error {
		ws = s.ctrl.Workouts(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return render.Workouts(ws), nil
}

// State returns the snapshot the page renders from.
func (s *Service) State(ctx context.Context) (types.State, error) {
	var st types.State
	err := s.do(ctx, "state", func(context.Context) error {
		st = types.State{
			Map:     s.widget.Snapshot(),
			Form:    s.form.Snapshot(),
			Entries: s.list.Snapshot(),
			Sort:    s.ctrl.SortDirection(),
			Count:   s.ctrl.Count(),
		}
		if p := s.ctrl.Pending(); p != nil {
			st.Form.Pending = &types.Point{Lat: p.Lat, Lng: p.Lng}
		}
		return nil
	})
	return st, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"queueSize":    s.queueSize,
		"eventTimeout": s.eventTimeout.String(),
		"workouts":     s.ctrl.Count(),
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["eventsProcessed"] = s.dispatcher.Processed()
		stats["eventsFailed"] = s.dispatcher.Failed()
		metrics.UpdateTotalWorkouts(s.ctrl.Count())
	}
	return stats
}

// Event lifecycle, guarded by compare-and-swap so that a caller only gives
// up on an event that has not started.
const (
	eventPending int32 = iota
	eventRunning
	eventAbandoned
)

// do queues fn and waits for the dispatcher to apply it. An error result
// means fn did not change anything: a caller that times out or is cancelled
// before its event starts marks it abandoned, and once the event is running
// the caller waits for its real outcome.
func (s *Service) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	var state atomic.Int32
	applyCtx := context.WithoutCancel(ctx)
	ev := model.NewEvent(uuid.NewString(), name, func(context.Context) error {
		if !state.CompareAndSwap(eventPending, eventRunning) {
			return fmt.Errorf("%w: %s", ErrAbandoned, name)
		}
		return fn(applyCtx)
	})
	if !q.Enqueue(ctx, ev) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.IsClosed() {
			return ErrNotStarted
		}
		return ErrBusy
	}

	timer := time.NewTimer(s.eventTimeout)
	defer timer.Stop()
	select {
	case err := <-ev.Done:
		return err
	case <-ctx.Done():
		if state.CompareAndSwap(eventPending, eventAbandoned) {
			return ctx.Err()
		}
	case <-timer.C:
		if state.CompareAndSwap(eventPending, eventAbandoned) {
			s.logger.Warn(ctx, "event timed out", logger.String("event", name), logger.String("eventID", ev.EventID))
			return fmt.Errorf("%w: %s", ErrTimeout, name)
		}
	}
	// Already running: its result is the answer.
	return <-ev.Done
}
