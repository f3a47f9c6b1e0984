// Package model contains domain models passed between layers.
package model

import (
	"context"
	"time"
)

// Event is one unit of work for the controller's event loop. Apply runs on
// the loop goroutine; its result is delivered on Done.
type Event struct {
	EventID string                          // unique id, for logs
	Name    string                          // operation, e.g. "record_workout"
	Apply   func(ctx context.Context) error // the state transition
	Done    chan error                      // buffered, receives Apply's result once
	TS      time.Time                       // enqueue time
}

// NewEvent builds an Event with a buffered reply channel.
func NewEvent(id, name string, apply func(ctx context.Context) error) Event {
	return Event{
		EventID: id,
		Name:    name,
		Apply:   apply,
		Done:    make(chan error, 1),
		TS:      time.Now(),
	}
}
