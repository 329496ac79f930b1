package sentinel

import "errors"

// Sentinel dependency errors. Stores and sinks return these (optionally wrapped)
// so the biometric service can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
