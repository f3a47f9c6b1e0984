package service

import (
	"context"

	"github.com/okian/mapty/internal/domain/workout"
)

// MapWidget is the map the workouts are drawn on. Handles are opaque.
type MapWidget interface {
	CreateMap(ctx context.Context, center workout.Coordinates, zoom int) (string, error)
	AddMarker(ctx context.Context, mapID string, at workout.Coordinates, popup string) (string, error)
	RemoveMarker(ctx context.Context, mapID, markerID string) error
	SetView(ctx context.Context, mapID string, at workout.Coordinates, zoom int, animate bool) error
	DestroyMap(ctx context.Context, mapID string) error
}

// Storage keeps the serialized workout list between sessions. Load
// returns repository.ErrNotFound when nothing was saved.
type Storage interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Clear(ctx context.Context) error
}

// ListView is the rendered workout list.
type ListView interface {
	Append(ctx context.Context, w workout.Workout) error
	Remove(ctx context.Context, id string) error
	Replace(ctx context.Context, ws []workout.Workout) error
	Clear(ctx context.Context) error
}

// Form is the workout entry form.
type Form interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	Clear(ctx context.Context) error
	SetKind(ctx context.Context, k workout.Kind) error
}
