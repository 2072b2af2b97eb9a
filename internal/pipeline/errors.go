package pipeline

import "errors"

var (
	// ErrNotFound means the full (variant, engine) cross product was
	// exhausted with zero hits. Recoverable by the caller with a better
	// capture; not a programming error.
	ErrNotFound = errors.New("no optical code found")

	// ErrTimeout means the wall-clock budget expired mid-scan. Partial
	// work is discarded; no partial result is returned.
	ErrTimeout = errors.New("scan timed out")

	// ErrInvalidInput means the supplied image failed basic sanity checks
	// before variant generation.
	ErrInvalidInput = errors.New("invalid input image")
)
