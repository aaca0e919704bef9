// Package checksum computes the integrity code attached to backup files.
//
// The code is a 31-multiplier rolling hash over UTF-16 code units folded
// into a signed 32-bit integer, the same arithmetic browsers used for
// earlier exports. It detects corruption and hand edits. It is NOT a
// security primitive: anyone can recompute it.
//
// Callers must hash canonical bytes (document.Canonical or
// document.CanonicalJSON); hashing ordinary json.Marshal output would tie
// the code to field order.
package checksum

import (
	"strconv"
	"unicode/utf16"
)

// Sum returns the rolling hash of s.
func Sum(s []byte) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(string(s))) {
		h = h*31 + int32(c)
	}
	return h
}

// String renders the hash of s as signed hexadecimal, e.g. "7a52d954" or
// "-1f3a".
func String(s []byte) string {
	return strconv.FormatInt(int64(Sum(s)), 16)
}

// Verify reports whether s hashes to expected.
func Verify(s []byte, expected string) bool {
	return String(s) == expected
}
