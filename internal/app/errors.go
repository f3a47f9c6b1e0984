package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotFound               = errors.New("workout not found")
	ErrMapUnavailable         = errors.New("map unavailable")
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	ErrBusy                   = errors.New("event queue full")
	ErrNotStarted             = errors.New("service not started")
	ErrTimeout                = errors.New("event timed out")
	ErrAbandoned              = errors.New("event abandoned by caller")
)
