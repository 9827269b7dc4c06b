package window

import "errors"

var (
	// ErrInvalidGeometry is returned when a geometry is built from a
	// non-positive extent or a negative count.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidViewport is returned for a negative scroll offset or a
	// non-positive viewport extent.
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrInvalidOverscan = errors.New("invalid overscan")
)

// FieldError describes which input was rejected. Kind is one of the
// sentinel errors above, so callers can match with errors.Is.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Kind.Error() + ": " + e.Field + " " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}
