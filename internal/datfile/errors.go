package datfile

import "errors"

// Error kinds reported by the builder. Wrapped with detail via fmt.Errorf;
// callers match with errors.Is.
var (
	// ErrInvalidConfig covers non-positive LED or frame counts handed to
	// creation/resize operations. Rejected before any state mutation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutOfRange covers universe/frame/pixel indices outside current
	// bounds. Indices are never clamped.
	ErrOutOfRange = errors.New("index out of range")
)
