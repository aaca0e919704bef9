package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no value. A missing
// key is the empty state, not a failure.
var ErrNotFound = errors.New("key not found")

// UnavailableError reports that the namespace could not be read or
// written. Callers recover by falling back to defaults.
type UnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage unavailable: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
