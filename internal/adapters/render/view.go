package render

import (
	"time"

	"github.com/okian/mapty/internal/domain/types"
	"github.com/okian/mapty/internal/domain/workout"
)

// Workout converts w to its API shape.
func Workout(w workout.Workout) types.Workout {
	out := types.Workout{
		ID:       w.ID,
		Date:     w.Date.UTC().Format(time.RFC3339),
		Type:     string(w.Kind),
		Label:    workout.Label(w),
		Coords:   types.Point{Lat: w.Coords.Lat, Lng: w.Coords.Lng},
		Distance: w.Distance,
		Duration: w.Duration,
	}
	if w.Running != nil {
		out.Cadence = w.Running.Cadence
		out.Pace = w.Running.Pace
	}
	if w.Cycling != nil {
		out.ElevGain = w.Cycling.ElevationGain
		out.Speed = w.Cycling.Speed
	}
	return out
}

// Workouts converts a list, keeping order.
func Workouts(ws []workout.Workout) []types.Workout {
	out := make([]types.Workout, 0, len(ws))
	for _, w := range ws {
		out = append(out, Workout(w))
	}
	return out
}
