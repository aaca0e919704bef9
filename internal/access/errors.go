package access

import (
	"errors"
	"fmt"
)

// Error reports an access failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Role is the role that was asked for, if any.
	Role Role
}

// ErrorCode categorizes access errors.
type ErrorCode string

const (
	// ErrCodeInvalidCredential means the password did not match the role.
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"

	// ErrCodeUnknownRole means the role name is not guru, kepsek or admin.
	ErrCodeUnknownRole ErrorCode = "UNKNOWN_ROLE"

	// ErrCodeNoSession means nobody is signed in.
	ErrCodeNoSession ErrorCode = "NO_SESSION"

	// ErrCodeSessionMismatch means the page role disagreed with the session
	// and the session was dropped.
	ErrCodeSessionMismatch ErrorCode = "SESSION_MISMATCH"

	// ErrCodeForbidden means the session role is below what the action needs.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

func (e *Error) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("%s: %s (role=%s)", e.Code, e.Message, e.Role)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// IsInvalidCredential reports a rejected password.
func IsInvalidCredential(err error) bool { return hasCode(err, ErrCodeInvalidCredential) }

// IsSessionMismatch reports a session dropped by RequirePage.
func IsSessionMismatch(err error) bool { return hasCode(err, ErrCodeSessionMismatch) }

// IsNoSession reports that a session was required but absent.
func IsNoSession(err error) bool { return hasCode(err, ErrCodeNoSession) }

// IsForbidden reports an action refused for the session's role.
func IsForbidden(err error) bool { return hasCode(err, ErrCodeForbidden) }

// Forbidden builds the error returned when have is below need.
func Forbidden(action string, have, need Role) error {
	msg := fmt.Sprintf("%s requires %s", action, need)
	if have != "" {
		msg += ", signed in as " + string(have)
	}
	return &Error{Code: ErrCodeForbidden, Message: msg, Role: need}
}
