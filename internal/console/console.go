// Package console is the non-visual half of the board's screens: it checks
// the signed-in role before every edit, funnels edits into the board,
// records the actions the audit trail cares about and drives the
// unsaved-changes reminder.
package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/board"
	"github.com/roach88/smaidrm/internal/clock"
	"github.com/roach88/smaidrm/internal/store"
)

// ResetWord must be typed to confirm a reset.
const ResetWord = "RESET"

// ErrNotConfirmed is returned by destructive operations called without
// their confirmation.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Console ties the board, the gate and the activity log together.
type Console struct {
	ns     store.Namespace
	board  *board.Board
	gate   *access.Gate
	log    *activity.Log
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithClock sets the clock used for form time ranges and backups.
func WithClock(clk clock.Clock) Option {
	return func(c *Console) { c.clock = clock.Or(clk) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// New creates a Console. ns holds the viewer preferences (the hidden
// banner flag); the board, gate and log bring their own storage.
func New(ns store.Namespace, b *board.Board, g *access.Gate, l *activity.Log, opts ...Option) *Console {
	c := &Console{
		ns:     ns,
		board:  b,
		gate:   g,
		log:    l,
		clock:  clock.System{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Board exposes the underlying board for read-only queries.
func (c *Console) Board() *board.Board {
	return c.board
}

// require returns the current session if it meets need.
func (c *Console) require(ctx context.Context, need access.Role, action string) (access.Session, error) {
	s, ok, err := c.gate.Current(ctx)
	if err != nil {
		return access.Session{}, err
	}
	if !ok || !s.HasAtLeast(need) {
		c.logger.Debug().Str("action", action).Str("need", string(need)).Str("have", string(s.Level)).Msg("refused")
		return access.Session{}, access.Forbidden(action, s.Level, need)
	}
	return s, nil
}

// record appends to the activity log. A log failure never undoes the
// action it describes.
func (c *Console) record(ctx context.Context, s access.Session, format string, args ...any) {
	if _, err := c.log.Append(ctx, s.Name, s.ID, fmt.Sprintf(format, args...)); err != nil {
		c.logger.Warn().Err(err).Msg("could not record activity")
	}
}
