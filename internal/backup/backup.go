// Package backup exports the whole board document to a checksummed file
// and validates such files before they replace the live document.
//
// The checksum is taken over the canonical serialization of the document,
// so reformatting a backup by hand (indentation, key order) keeps it
// valid while any change to its content does not.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/smaidrm/internal/checksum"
	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/schema"
)

// Envelope is the backup file.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	Exported   string          `json:"exported"`
	ExportedBy string          `json:"exportedBy"`
	Checksum   string          `json:"checksum"`
}

// Summary describes a verified backup without applying it.
type Summary struct {
	Exported   string `json:"exported"`
	ExportedBy string `json:"exportedBy"`
	Version    string `json:"version"`
	LastUpdate string `json:"lastUpdate"`
	Leave      int    `json:"guruIzin"`
	Duty       int    `json:"guruPiket"`
	Agenda     int    `json:"agenda"`
	Checksum   string `json:"checksum"`
}

// Export wraps doc in an envelope stamped with at and the exporting role.
func Export(doc document.Document, role string, at time.Time) (Envelope, error) {
	canonical, err := document.Canonical(doc)
	if err != nil {
		return Envelope{}, fmt.Errorf("export: %w", err)
	}
	return Envelope{
		Data:       canonical,
		Exported:   at.UTC().Format(time.RFC3339),
		ExportedBy: role,
		Checksum:   checksum.String(canonical),
	}, nil
}

// Encode renders an envelope as the indented JSON written to disk.
func Encode(env Envelope) ([]byte, error) {
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return append(out, '\n'), nil
}

// FileName is the suggested download name for a backup taken at t.
func FileName(t time.Time) string {
	return "smaidrm-backup-" + t.Format(document.DateLayout) + ".json"
}

// Preview verifies raw and summarizes it. It has no side effects.
func Preview(raw []byte) (Summary, error) {
	env, doc, err := verify(raw)
	if err != nil {
		return Summary{}, err
	}
	return summarize(env, doc), nil
}

// Verify checks raw once and returns both the summary and the document.
func Verify(raw []byte) (Summary, document.Document, error) {
	env, doc, err := verify(raw)
	if err != nil {
		return Summary{}, document.Document{}, err
	}
	return summarize(env, doc), doc, nil
}

func summarize(env Envelope, doc document.Document) Summary {
	return Summary{
		Exported:   env.Exported,
		ExportedBy: env.ExportedBy,
		Version:    doc.Meta.Version,
		LastUpdate: doc.Meta.LastUpdate,
		Leave:      len(doc.Leave),
		Duty:       len(doc.Duty),
		Agenda:     len(doc.Agenda),
		Checksum:   env.Checksum,
	}
}

// Restore verifies raw and returns the document it carries. The caller
// installs it with board.Replace; nothing here touches the live document.
func Restore(raw []byte) (document.Document, error) {
	_, doc, err := verify(raw)
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// ResetToDefault returns the factory document stamped with now.
func ResetToDefault(now time.Time) document.Document {
	return document.Default(now)
}

func verify(raw []byte) (Envelope, document.Document, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: "not a JSON backup", Err: err}
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: `missing "data"`}
	}
	if env.Checksum == "" {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: `missing "checksum"`}
	}

	// Data that cannot be canonicalized was not produced by Export, so it
	// is hashed as-is and fails the comparison below.
	hashed, err := document.CanonicalJSON(data)
	if err != nil {
		hashed = data
	}
	if actual := checksum.String(hashed); actual != env.Checksum {
		return Envelope{}, document.Document{}, &IntegrityMismatchError{Expected: env.Checksum, Actual: actual}
	}

	if err := schema.Check(data); err != nil {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: "data does not match the document schema", Err: err}
	}
	doc, err := document.Decode(data)
	if err != nil {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: "data is not a document", Err: err}
	}
	if err := document.Validate("document", doc); err != nil {
		return Envelope{}, document.Document{}, &MalformedEnvelopeError{Reason: "document is invalid", Err: err}
	}
	return env, doc, nil
}
