// Package board owns the live Document and its load/save lifecycle.
//
// Edits happen in memory and mark the board dirty. Save is the only path
// that stamps meta.lastUpdate and writes to the namespace. Replace is used
// by restore and reset to swap the whole document without merging.
//
// Thread-safety: every method takes the board mutex, so a reminder
// goroutine may poll Dirty while the owner edits.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/smaidrm/internal/clock"
	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/schema"
	"github.com/roach88/smaidrm/internal/store"
)

// ErrNotFound is returned when an edit names an entry that does not exist.
var ErrNotFound = errors.New("entry not found")

// Source says where Load got the document from.
type Source string

const (
	SourceStored    Source = "stored"    // decoded from the namespace
	SourceDefault   Source = "default"   // namespace was empty; default persisted
	SourceRecovered Source = "recovered" // stored value was unusable; default in memory
	SourceMemory    Source = "memory"    // namespace unavailable; running on memory
)

// LoadResult reports how Load resolved the document. Warning is non-nil
// when storage failed and the board switched to an in-memory namespace.
type LoadResult struct {
	Source  Source
	Warning error
}

type Board struct {
	mu     sync.Mutex
	ns     store.Namespace
	clock  clock.Clock
	logger zerolog.Logger

	doc   document.Document
	dirty bool
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the clock used for ids and timestamps.
func WithClock(c clock.Clock) Option {
	return func(b *Board) {
		b.clock = clock.Or(c)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Board) {
		b.logger = l
	}
}

// New creates a board over ns holding the default document. Call Load to
// read the persisted one.
func New(ns store.Namespace, opts ...Option) *Board {
	b := &Board{
		ns:     ns,
		clock:  clock.System{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.doc = document.Default(b.clock.Now())
	return b
}

// Load reads the persisted document.
//
// An empty namespace gets the default document, persisted immediately.
// A stored value that is not JSON, fails the schema or breaks a field
// rule is logged and replaced in memory by the default; the stored bytes stay until the next
// save. If the namespace cannot be read or written the board keeps the
// default on an in-memory namespace and returns the failure as a warning.
func (b *Board) Load(ctx context.Context) LoadResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dirty = false

	raw, err := b.ns.Get(ctx, store.KeyDocument)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b.doc = document.Default(b.clock.Now())
		if err := b.persistLocked(ctx, b.doc); err != nil {
			return b.fallbackLocked(err)
		}
		b.logger.Info().Msg("no stored document; default written")
		return LoadResult{Source: SourceDefault}
	case err != nil:
		return b.fallbackLocked(err)
	}

	doc, err := decode(raw)
	if err != nil {
		b.logger.Warn().Err(err).Msg("stored document unusable; using default")
		b.doc = document.Default(b.clock.Now())
		return LoadResult{Source: SourceRecovered}
	}

	b.doc = doc
	b.logger.Debug().
		Int("guruIzin", len(doc.Leave)).
		Int("guruPiket", len(doc.Duty)).
		Int("agenda", len(doc.Agenda)).
		Msg("document loaded")
	return LoadResult{Source: SourceStored}
}

func (b *Board) fallbackLocked(err error) LoadResult {
	b.logger.Warn().Err(err).Msg("storage unavailable; continuing in memory")
	b.doc = document.Default(b.clock.Now())
	b.ns = store.NewMemory()
	return LoadResult{Source: SourceMemory, Warning: err}
}

func decode(raw []byte) (document.Document, error) {
	if err := schema.Check(raw); err != nil {
		return document.Document{}, err
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return document.Document{}, err
	}
	if err := document.Validate("stored document", doc); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// Save compacts the rosters, stamps meta.lastUpdate and persists the
// document. A *document.ValidationError leaves both memory and storage
// untouched.
func (b *Board) Save(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.doc.Clone()
	compact(&next)
	next.Meta.LastUpdate = b.clock.Now().UTC().Format(timestampLayout)
	if next.Meta.Version == "" {
		next.Meta.Version = document.Version
	}

	if err := document.Validate("document", next); err != nil {
		return err
	}
	if err := b.persistLocked(ctx, next); err != nil {
		return err
	}

	b.doc = next
	b.dirty = false
	b.logger.Info().Str("lastUpdate", next.Meta.LastUpdate).Msg("document saved")
	return nil
}

// Replace overwrites the document in memory and in storage. meta is kept
// as given.
func (b *Board) Replace(ctx context.Context, doc document.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := doc.Clone()
	next.Normalize()
	if err := b.persistLocked(ctx, next); err != nil {
		return err
	}
	b.doc = next
	b.dirty = false
	return nil
}

func (b *Board) persistLocked(ctx context.Context, doc document.Document) error {
	raw, err := document.Marshal(doc)
	if err != nil {
		return err
	}
	if err := b.ns.Put(ctx, store.KeyDocument, raw); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}
	return nil
}

// Compact drops duty and agenda rows with a blank field. Save runs it.
func (b *Board) Compact() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if compact(&b.doc) {
		b.dirty = true
	}
}

func compact(d *document.Document) bool {
	changed := false

	duty := d.Duty[:0:0]
	for _, a := range d.Duty {
		if blank(a.Name) || blank(a.Subject) {
			changed = true
			continue
		}
		duty = append(duty, a)
	}

	agenda := d.Agenda[:0:0]
	for _, a := range d.Agenda {
		if blank(a.TimeRange) || blank(a.Activity) {
			changed = true
			continue
		}
		agenda = append(agenda, a)
	}

	d.Duty = duty
	d.Agenda = agenda
	d.Normalize()
	return changed
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Dirty reports whether there are edits not yet saved.
func (b *Board) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// Snapshot returns a deep copy of the current document.
func (b *Board) Snapshot() document.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Clone()
}

// Today is the board's current calendar date.
func (b *Board) Today() string {
	return b.clock.Now().Format(document.DateLayout)
}

// LeaveOn returns leave requests dated exactly date.
func (b *Board) LeaveOn(date string) []document.LeaveRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.LeaveOn(date)
}

// PendingCount returns the number of pending leave requests.
func (b *Board) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.PendingCount()
}

// Counts returns roster sizes with leave counted against today.
func (b *Board) Counts() document.Counts {
	today := b.Today()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Counts(today)
}
