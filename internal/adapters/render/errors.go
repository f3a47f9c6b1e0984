package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrUnknownEntry = errors.New("unknown list entry")
	ErrDuplicate    = errors.New("duplicate list entry")
)
