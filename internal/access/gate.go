// Package access signs users in and out and answers role checks.
//
// The session lives in the namespace under store.KeySession so it
// survives between CLI invocations until an explicit logout.
package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/clock"
	"github.com/roach88/smaidrm/internal/store"
)

// Session is the signed-in user.
type Session struct {
	Level     Role   `json:"level"`
	Name      string `json:"name"`
	LoginTime string `json:"loginTime"`
	ID        string `json:"id,omitempty"`
}

// HasAtLeast reports whether the session role meets min.
func (s Session) HasAtLeast(min Role) bool {
	return s.Level.AtLeast(min)
}

// IDGenerator produces session identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Recorder is where sign-in events go. *activity.Log implements it.
type Recorder interface {
	Append(ctx context.Context, actor, session, action string) (activity.Entry, error)
}

// Gate manages the persisted session.
type Gate struct {
	ns     store.Namespace
	log    Recorder
	creds  Credentials
	ids    IDGenerator
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithCredentials replaces the default passwords.
func WithCredentials(c Credentials) Option {
	return func(g *Gate) { g.creds = c }
}

// WithIDs replaces the session id generator.
func WithIDs(ids IDGenerator) Option {
	return func(g *Gate) { g.ids = ids }
}

// WithClock sets the clock used for login times.
func WithClock(c clock.Clock) Option {
	return func(g *Gate) { g.clock = clock.Or(c) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a Gate over ns that records sign-ins to log.
func NewGate(ns store.Namespace, log Recorder, opts ...Option) *Gate {
	g := &Gate{
		ns:     ns,
		log:    log,
		creds:  DefaultCredentials(),
		ids:    UUIDv7Generator{},
		clock:  clock.System{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login checks password against role and starts a session. Teachers need
// no password. A wrong password leaves any existing session in place.
func (g *Gate) Login(ctx context.Context, role Role, password string) (Session, error) {
	if role.rank() == 0 {
		return Session{}, &Error{Code: ErrCodeUnknownRole, Message: fmt.Sprintf("unknown role %q", role)}
	}
	if role != RoleGuru && !g.creds.Check(role, password) {
		g.logger.Warn().Str("role", string(role)).Msg("login rejected")
		return Session{}, &Error{Code: ErrCodeInvalidCredential, Message: "wrong password", Role: role}
	}

	s := Session{
		Level:     role,
		Name:      role.DisplayName(),
		LoginTime: g.clock.Now().UTC().Format(time.RFC3339),
		ID:        g.ids.Generate(),
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := g.ns.Put(ctx, store.KeySession, raw); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	if _, err := g.log.Append(ctx, s.Name, s.ID, fmt.Sprintf("User %s logged in as %s", s.Name, s.Level)); err != nil {
		g.logger.Warn().Err(err).Msg("could not record login")
	}
	g.logger.Info().Str("role", string(role)).Str("session", s.ID).Msg("logged in")
	return s, nil
}

// Logout records the logout against the outgoing session, then clears it.
// Logging out with no session is a no-op.
func (g *Gate) Logout(ctx context.Context) error {
	s, ok, err := g.Current(ctx)
	if err != nil {
		return err
	}
	if ok {
		if _, err := g.log.Append(ctx, s.Name, s.ID, fmt.Sprintf("User %s logged out", s.Name)); err != nil {
			g.logger.Warn().Err(err).Msg("could not record logout")
		}
	}
	return g.clear(ctx)
}

func (g *Gate) clear(ctx context.Context) error {
	if err := g.ns.Delete(ctx, store.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the persisted session. An unreadable stored session is
// treated as no session.
func (g *Gate) Current(ctx context.Context) (Session, bool, error) {
	raw, err := g.ns.Get(ctx, store.KeySession)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Level.rank() == 0 {
		g.logger.Warn().Msg("stored session unreadable; ignoring")
		return Session{}, false, nil
	}
	return s, true, nil
}

// HasAtLeast reports whether someone is signed in with at least min.
func (g *Gate) HasAtLeast(ctx context.Context, min Role) bool {
	s, ok, err := g.Current(ctx)
	if err != nil || !ok {
		return false
	}
	return s.HasAtLeast(min)
}

// RequirePage returns the session for a page opened with a role hint.
// With no session it fails with ErrCodeNoSession. If hint is set and
// differs from the session role the session is dropped and
// ErrCodeSessionMismatch is returned; the user must sign in again.
func (g *Gate) RequirePage(ctx context.Context, hint Role) (Session, error) {
	s, ok, err := g.Current(ctx)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, &Error{Code: ErrCodeNoSession, Message: "not signed in", Role: hint}
	}
	if hint == "" || hint == s.Level {
		return s, nil
	}

	if err := g.Logout(ctx); err != nil {
		return Session{}, err
	}
	return Session{}, &Error{
		Code:    ErrCodeSessionMismatch,
		Message: fmt.Sprintf("page is for %s but session is %s", hint, s.Level),
		Role:    hint,
	}
}
