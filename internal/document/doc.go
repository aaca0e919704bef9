// Package document defines the board's single persisted aggregate.
//
// A Document holds the teacher leave roster, the duty roster, the
// principal's status, the day's agenda, the announcement banner, settings
// and metadata. JSON field names follow the browser storage format the
// board has always used, so exports from older installs stay readable.
//
// Two serializations exist:
//   - Marshal/Decode: ordinary JSON for storage
//   - Canonical: RFC 8785 style JSON used only as checksum input
//
// This package imports nothing internal.
package document
