package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrInitFailed = errors.New("metrics init failed")
)
