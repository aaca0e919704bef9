package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/backup"
	"github.com/roach88/smaidrm/internal/board"
	"github.com/roach88/smaidrm/internal/console"
	"github.com/roach88/smaidrm/internal/document"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data, func(w io.Writer) { fmt.Fprintln(w, "not used") })
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.NotContains(t, buf.String(), "not used")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E_INTEGRITY", "checksum mismatch", map[string]string{"expected": "1", "actual": "2"})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_INTEGRITY", resp.Error.Code)
	assert.Equal(t, "checksum mismatch", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("ignored", func(w io.Writer) { fmt.Fprintln(w, "Signed out") })
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_TextErrorListsFields(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	fields := []document.FieldError{{Field: "nama", Error: "nama is required"}}
	err := formatter.Error("E_VALIDATION", "invalid leave request", fields)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E_VALIDATION]: invalid leave request")
	assert.Contains(t, buf.String(), "  - nama: nama is required")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"expected": "1"}
	err := formatter.Error("E_INTEGRITY", "checksum mismatch", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E_INTEGRITY]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("wrote %d bytes", 42)

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "wrote 42 bytes")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"validation", fmt.Errorf("add: %w", &document.ValidationError{Record: "leave request"}), "E_VALIDATION", ExitFailure},
		{"integrity", &backup.IntegrityMismatchError{Expected: "1", Actual: "2"}, "E_INTEGRITY", ExitFailure},
		{"malformed", &backup.MalformedEnvelopeError{Reason: "missing data"}, "E_MALFORMED_BACKUP", ExitFailure},
		{"forbidden", access.Forbidden("reset data", access.RoleKepsek, access.RoleAdmin), "E_FORBIDDEN", ExitFailure},
		{"no session", &access.Error{Code: access.ErrCodeNoSession}, "E_NO_SESSION", ExitFailure},
		{"not confirmed", fmt.Errorf("restore: %w", console.ErrNotConfirmed), "E_NOT_CONFIRMED", ExitFailure},
		{"not found", fmt.Errorf("duty entry 4: %w", board.ErrNotFound), "E_NOT_FOUND", ExitFailure},
		{"other", errors.New("disk on fire"), "E_COMMAND", ExitCommandError},
		{"explicit exit", NewExitError(ExitCommandError, "bad position"), "E_COMMAND", ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, errorCode(tt.err))
			assert.Equal(t, tt.wantExit, GetExitCode(tt.err))
		})
	}
}

func TestErrorDetails(t *testing.T) {
	ve := &document.ValidationError{Fields: []document.FieldError{{Field: "mapel", Error: "mapel is required"}}}
	assert.Equal(t, ve.Fields, errorDetails(ve))

	ie := &backup.IntegrityMismatchError{Expected: "aa", Actual: "bb"}
	assert.Equal(t, map[string]string{"expected": "aa", "actual": "bb"}, errorDetails(ie))

	assert.Nil(t, errorDetails(errors.New("plain")))
}

func TestExitError(t *testing.T) {
	inner := errors.New("permission denied")
	err := WrapExitError(ExitCommandError, "failed to write backup", inner)
	assert.Equal(t, "failed to write backup: permission denied", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestErrorClassification_MalformedWinsOverValidation(t *testing.T) {
	err := &backup.MalformedEnvelopeError{Reason: "invalid document", Err: &document.ValidationError{Record: "document"}}
	assert.Equal(t, "E_MALFORMED_BACKUP", errorCode(err))
}
