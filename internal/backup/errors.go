package backup

import (
	"errors"
	"fmt"
)

// MalformedEnvelopeError means the file is not a usable backup: not JSON,
// a required field is absent, or the document inside is not valid.
type MalformedEnvelopeError struct {
	Reason string
	Err    error
}

func (e *MalformedEnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed backup: %s: %v", e.Reason, e.Err)
	}
	return "malformed backup: " + e.Reason
}

func (e *MalformedEnvelopeError) Unwrap() error {
	return e.Err
}

// IntegrityMismatchError means the checksum does not match the data; the
// file was edited or damaged after export.
type IntegrityMismatchError struct {
	Expected string
	Actual   string
}

func (e *IntegrityMismatchError) Error() string {
	return fmt.Sprintf("backup integrity check failed: checksum %s, data hashes to %s", e.Expected, e.Actual)
}

// IsMalformed reports whether err wraps a MalformedEnvelopeError.
func IsMalformed(err error) bool {
	var me *MalformedEnvelopeError
	return errors.As(err, &me)
}

// IsIntegrityMismatch reports whether err wraps an IntegrityMismatchError.
func IsIntegrityMismatch(err error) bool {
	var ie *IntegrityMismatchError
	return errors.As(err, &ie)
}
