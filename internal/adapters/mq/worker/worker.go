// Package worker runs queued events one at a time. A single Dispatcher is
// the only goroutine that touches controller state.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mapty/internal/adapters/mq/queue"
	"github.com/okian/mapty/pkg/logger"
	"github.com/okian/mapty/pkg/metrics"
)

// Event is what the dispatcher reads off the queue.
type Event = queue.Event

// Queue defines how the dispatcher receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Dispatcher applies events sequentially and replies on each event's Done.
type Dispatcher struct {
	queue Queue
	name  string

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewDispatcher creates a dispatcher reading from q.
func NewDispatcher(q Queue, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("dispatcher")
	}
	if d.name != "dispatcher" {
		d.logger = d.logger.Named(d.name)
	}
	return d
}

// Run is the event loop. It returns when ctx is cancelled, Shutdown is
// called or the queue is closed and drained.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := d.queue.Dequeue(loopCtx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			d.drain(events)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			d.process(ctx, event)
		}
	}
}

// Shutdown stops the loop. Events still buffered get ErrStopped.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.shutdown) })

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Processed returns the number of events applied so far.
func (d *Dispatcher) Processed() int64 { return d.processed.Load() }

// Failed returns the number of events whose Apply returned an error.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }

func (d *Dispatcher) process(ctx context.Context, event Event) { //nolint:gocritic // hugeParam: mirrors the queue's value semantics
	start := time.Now()
	err := d.apply(ctx, event)
	metrics.RecordEventLatency(event.Name, float64(time.Since(start).Milliseconds()))
	d.processed.Add(1)

	if err != nil {
		d.failed.Add(1)
		metrics.RecordEventError(event.Name)
		d.logger.Debug(ctx, "event returned error",
			logger.String("event", event.Name),
			logger.String("eventID", event.EventID),
			logger.Error(err),
		)
	}
	reply(event, err)
}

func (d *Dispatcher) apply(ctx context.Context, event Event) (err error) { //nolint:gocritic // hugeParam: see process
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("dispatcher", "panic")
			metrics.RecordErrorByType("panic", "critical")
			d.logger.Error(ctx, "event handler panicked",
				logger.String("event", event.Name),
				logger.Any("panic", r),
			)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	if event.Apply == nil {
		return nil
	}
	return event.Apply(ctx)
}

func (d *Dispatcher) drain(events <-chan Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			reply(event, ErrStopped)
		default:
			return
		}
	}
}

func reply(event Event, err error) { //nolint:gocritic // hugeParam: see process
	if event.Done == nil {
		return
	}
	select {
	case event.Done <- err:
	default:
	}
}
