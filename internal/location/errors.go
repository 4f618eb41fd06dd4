package location

import (
	"errors"
	"fmt"
)

var (
	ErrLocationDenied      = errors.New("location permission denied")
	ErrLocationTimeout     = errors.New("location request timed out")
	ErrLocationUnavailable = errors.New("location unavailable")
)

// LocationError carries the failure kind (one of the sentinels above) and the
// provider's underlying error
type LocationError struct {
	Kind error
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Is lets errors.Is match the kind sentinel
func (e *LocationError) Is(target error) bool {
	return target == e.Kind
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

func newError(kind, err error) *LocationError {
	return &LocationError{Kind: kind, Err: err}
}
