package trigger

import "errors"

var (
	// ErrResolution means a marker could not be resolved because the trigger
	// element is missing from the layout. The binding stays neutral.
	ErrResolution = errors.New("trigger resolution failed")
	// ErrDegenerateExtent means start and end resolve to the same offset.
	// The binding still works and reports a step function.
	ErrDegenerateExtent = errors.New("degenerate trigger extent")
	// ErrInvalidMarker means a marker string could not be parsed.
	ErrInvalidMarker = errors.New("invalid marker")
)
