package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound = errors.New("no stored data")
	ErrInvalid  = errors.New("invalid store configuration")
)
