package mapview

import "time"

// Option applies a configuration option to the Widget.
type Option func(*Widget)

// WithPanDuration sets how long animated view changes take.
func WithPanDuration(d time.Duration) Option {
	return func(w *Widget) {
		if d >= 0 {
			w.panDuration = d
		}
	}
}

// WithHandleGenerator replaces the uuid-based handle generator.
func WithHandleGenerator(next func() string) Option {
	return func(w *Widget) {
		if next != nil {
			w.newHandle = next
		}
	}
}
