package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/backup"
	"github.com/roach88/smaidrm/internal/board"
	"github.com/roach88/smaidrm/internal/console"
	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input: validation, integrity, credentials, role
	ExitCommandError = 2 // Command error (bad flags, unreadable files, storage)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Rejections the user
// can fix by changing their input map to ExitFailure; anything else is a
// command error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errorCode(err) != "E_COMMAND" {
		return ExitFailure
	}
	return ExitCommandError
}

// errorCode classifies err for JSON output.
func errorCode(err error) string {
	var ae *access.Error
	switch {
	case backup.IsIntegrityMismatch(err):
		return "E_INTEGRITY"
	case backup.IsMalformed(err):
		return "E_MALFORMED_BACKUP"
	case document.IsValidationError(err):
		return "E_VALIDATION"
	case errors.As(err, &ae):
		return "E_" + string(ae.Code)
	case errors.Is(err, console.ErrNotConfirmed):
		return "E_NOT_CONFIRMED"
	case errors.Is(err, board.ErrNotFound):
		return "E_NOT_FOUND"
	}
	return "E_COMMAND"
}

// errorDetails returns structured context for err, if any.
func errorDetails(err error) any {
	var ve *document.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var se *schema.Error
	if errors.As(err, &se) {
		return se.Violations
	}
	var ie *backup.IntegrityMismatchError
	if errors.As(err, &ie) {
		return map[string]string{"expected": ie.Expected, "actual": ie.Actual}
	}
	return nil
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E_VALIDATION", "E_INTEGRITY", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs data. In text mode text renders it; a nil text prints
// data with fmt.
func (f *OutputFormatter) Success(data any, text func(io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if fields, ok := details.([]document.FieldError); ok {
		for _, fe := range fields {
			fmt.Fprintf(f.Writer, "  - %s: %s\n", fe.Field, fe.Error)
		}
	} else if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
