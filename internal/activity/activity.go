// Package activity keeps the bounded, newest-first audit trail of who did
// what on the board.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/smaidrm/internal/clock"
	"github.com/roach88/smaidrm/internal/store"
)

// MaxEntries bounds the log. Older entries fall off the end.
const MaxEntries = 100

// TimestampLayout matches the millisecond ISO form browsers write.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Origin is recorded in every entry; the board only runs locally.
const Origin = "localhost"

// UnknownActor is recorded when nobody is signed in.
const UnknownActor = "Unknown"

// Entry is one audit line.
type Entry struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	IP        string `json:"ip"`
	Session   string `json:"session,omitempty"`
}

// Log reads and writes the audit trail under store.KeyActivityLog.
type Log struct {
	mu    sync.Mutex
	ns    store.Namespace
	clock clock.Clock
}

// New creates a Log over ns. A nil clock means the system clock.
func New(ns store.Namespace, c clock.Clock) *Log {
	return &Log{ns: ns, clock: clock.Or(c)}
}

// Append records action by actor at the front of the log and drops
// anything past MaxEntries. session may be empty.
func (l *Log) Append(ctx context.Context, actor, session, action string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if actor == "" {
		actor = UnknownActor
	}
	e := Entry{
		Timestamp: l.clock.Now().UTC().Format(TimestampLayout),
		User:      actor,
		Action:    action,
		IP:        Origin,
		Session:   session,
	}

	entries, err := l.readLocked(ctx)
	if err != nil {
		return Entry{}, err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	if err := l.writeLocked(ctx, entries); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Clear removes every entry.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ns.Delete(ctx, store.KeyActivityLog); err != nil {
		return fmt.Errorf("clear activity log: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns none.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// All returns the whole log, newest first.
func (l *Log) All(ctx context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked(ctx)
}

// readLocked treats a missing or unreadable log as empty. A corrupt log is
// not worth failing an edit over.
func (l *Log) readLocked(ctx context.Context) ([]Entry, error) {
	raw, err := l.ns.Get(ctx, store.KeyActivityLog)
	if errors.Is(err, store.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (l *Log) writeLocked(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode activity log: %w", err)
	}
	if err := l.ns.Put(ctx, store.KeyActivityLog, raw); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}
