// Package workout models recorded activities as a tagged variant: a Kind
// discriminator plus exactly one kind-specific payload.
package workout

import (
	"math"
	"strings"
	"time"
)

// Kind discriminates the workout variants.
type Kind string

// Supported kinds.
const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind normalizes s into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	default:
		return "", ErrUnknownKind
	}
}

// Coordinates is a geographic point in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether c is a finite point inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return finite(c.Lat) && finite(c.Lng) &&
		c.Lat >= -90 && c.Lat <= 90 &&
		c.Lng >= -180 && c.Lng <= 180
}

// Running carries the running-only fields.
type Running struct {
	Cadence float64 // steps per minute
	Pace    float64 // min/km, derived
}

// Cycling carries the cycling-only fields.
type Cycling struct {
	ElevationGain float64 // meters
	Speed         float64 // km/h, derived
}

// Workout is one recorded activity. Exactly one of Running and Cycling is
// set, matching Kind. Values are immutable once built by New.
type Workout struct {
	ID       string
	Date     time.Time
	Kind     Kind
	Coords   Coordinates
	Distance float64 // km
	Duration float64 // minutes

	Running *Running
	Cycling *Cycling
}

// Params is the raw input for New. Coords is nil when no location was
// picked on the map yet.
type Params struct {
	ID            string
	Date          time.Time
	Kind          Kind
	Coords        *Coordinates
	Distance      float64
	Duration      float64
	Cadence       float64
	ElevationGain float64
}

// New validates p and builds the matching variant with its derived field.
func New(p Params) (Workout, error) {
	if err := Validate(p); err != nil {
		return Workout{}, err
	}

	w := Workout{
		ID:       p.ID,
		Date:     p.Date,
		Kind:     p.Kind,
		Coords:   *p.Coords,
		Distance: p.Distance,
		Duration: p.Duration,
	}
	derived := Derive(p.Kind, p.Distance, p.Duration)
	switch p.Kind {
	case KindRunning:
		w.Running = &Running{Cadence: p.Cadence, Pace: derived}
	case KindCycling:
		w.Cycling = &Cycling{ElevationGain: p.ElevationGain, Speed: derived}
	}
	return w, nil
}

// Validate checks p without building anything.
func Validate(p Params) error {
	switch p.Kind {
	case KindRunning, KindCycling:
	default:
		return invalid("type", "must be running or cycling")
	}
	if !positive(p.Distance) {
		return invalid("distance", "must be a positive number")
	}
	if !positive(p.Duration) {
		return invalid("duration", "must be a positive number")
	}
	if p.Kind == KindRunning && !positive(p.Cadence) {
		return invalid("cadence", "must be a positive number")
	}
	if p.Kind == KindCycling && !positive(p.ElevationGain) {
		return invalid("elevGain", "must be a positive number")
	}
	if p.Coords == nil {
		return invalid("coords", "pick a location on the map first")
	}
	if !p.Coords.Valid() {
		return invalid("coords", "out of range")
	}
	if strings.TrimSpace(p.ID) == "" {
		return invalid("id", "must not be empty")
	}
	return nil
}

// Derive computes the kind's derived metric: pace (min/km) for running and
// speed (km/h) for cycling. Unknown kinds derive 0.
func Derive(kind Kind, distance, duration float64) float64 {
	switch kind {
	case KindRunning:
		return duration / distance
	case KindCycling:
		return distance / (duration / 60)
	default:
		return 0
	}
}

// Metric returns the derived metric of w.
func (w Workout) Metric() float64 {
	switch {
	case w.Running != nil:
		return w.Running.Pace
	case w.Cycling != nil:
		return w.Cycling.Speed
	default:
		return 0
	}
}

func positive(v float64) bool { return finite(v) && v > 0 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
