// Package store provides the board's persistent key-value namespace.
//
// The namespace replaces browser local storage: a handful of well-known
// keys, each holding one JSON value.
//
//   - smaidrm_data:         the live Document
//   - smaidrm_current_user: the live Session (absent when logged out)
//   - smaidrm_logs:         the activity log, newest first, max 100
//   - hide_announcement:    banner suppression flag
//
// Two implementations exist. Store is backed by a SQLite file and is what
// the CLI uses. Memory keeps values in process and serves as the fallback
// when the file cannot be opened, and in tests.
//
// # Database Configuration
//
//   - WAL mode: readers do not block the single writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Last writer wins. There is no cross-process coordination beyond what
// SQLite's file locking gives for free.
package store
