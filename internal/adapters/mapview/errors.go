package mapview

import "errors"

// Sentinel kinds for map widget errors.
var (
	ErrNoMap         = errors.New("map not initialized")
	ErrUnknownMap    = errors.New("unknown map handle")
	ErrUnknownMarker = errors.New("unknown marker handle")
	ErrInvalidPoint  = errors.New("invalid map point")
)
