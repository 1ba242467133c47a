package lightconfig

import "errors"

// Domain errors for the lightconfig package.
//
//	if errors.Is(err, lightconfig.ErrNotFound) {
//	    // no row for that user
//	}
var (
	// ErrValidation is returned when upsert input is missing a required
	// field or holds an out-of-range value. Nothing is written.
	ErrValidation = errors.New("lightconfig: invalid configuration")

	// ErrNotFound is returned when an operation names a user with no row.
	ErrNotFound = errors.New("lightconfig: user not found")
)
