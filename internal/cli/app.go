package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/board"
	"github.com/roach88/smaidrm/internal/clock"
	"github.com/roach88/smaidrm/internal/config"
	"github.com/roach88/smaidrm/internal/console"
	"github.com/roach88/smaidrm/internal/logging"
	"github.com/roach88/smaidrm/internal/store"
)

// app is one command's view of the board: the opened database and every
// component wired over it.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   *store.Store
	board   *board.Board
	gate    *access.Gate
	log     *activity.Log
	console *console.Console
	out     *OutputFormatter
}

// open loads config, opens the database and loads the board. Callers must
// Close the app.
func (o *RootOptions) open(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Loader{
		Path:      o.ConfigPath,
		DotEnv:    config.DefaultDotEnv,
		LookupEnv: os.LookupEnv,
	}.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.DBPath = o.Database
	}

	level := cfg.LogLevel
	if o.Verbose {
		level = "debug"
	}
	logger := logging.New(logging.ProfileRuntime, logging.Config{Level: level, Out: cmd.ErrOrStderr()})

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	clk := clock.Or(o.Clock)
	log := activity.New(st, clk)

	gateOpts := []access.Option{
		access.WithClock(clk),
		access.WithLogger(logger),
		access.WithCredentials(access.StaticCredentials{
			access.RoleKepsek: cfg.KepsekPassword,
			access.RoleAdmin:  cfg.AdminPassword,
		}),
	}
	if o.IDs != nil {
		gateOpts = append(gateOpts, access.WithIDs(o.IDs))
	}
	gate := access.NewGate(st, log, gateOpts...)

	b := board.New(st, board.WithClock(clk), board.WithLogger(logger))
	res := b.Load(ctx)
	if res.Warning != nil {
		logger.Warn().Err(res.Warning).Msg("changes will not be kept")
	}
	if res.Source == board.SourceDefault && cfg.WhatsAppNumber != "" {
		if err := seedWhatsApp(ctx, b, cfg.WhatsAppNumber); err != nil {
			logger.Warn().Err(err).Msg("configured whatsapp number ignored")
		}
	}

	c := console.New(st, b, gate, log, console.WithClock(clk), console.WithLogger(logger))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		board:   b,
		gate:    gate,
		log:     log,
		console: c,
		out: &OutputFormatter{
			Format:    o.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   o.Verbose,
		},
	}, nil
}

// seedWhatsApp applies the configured number to a freshly created board.
func seedWhatsApp(ctx context.Context, b *board.Board, number string) error {
	if b.Snapshot().Settings.WhatsAppNumber == number {
		return nil
	}
	if err := b.SetWhatsApp(number); err != nil {
		return err
	}
	return b.Save(ctx)
}

// Close releases the database.
func (a *app) Close() error {
	return a.store.Close()
}

// page enforces --page-role for commands run from the admin page.
func (a *app) page(ctx context.Context, hint string) error {
	if hint == "" {
		return nil
	}
	role, err := access.ParseRole(hint)
	if err != nil {
		return err
	}
	_, err = a.gate.RequirePage(ctx, role)
	return err
}

// withApp opens the app, runs fn and closes it. Inside a shell the
// session's app is used and stays open.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	if a := o.shell; a != nil {
		a.out.Format = o.Format
		a.out.Verbose = o.Verbose
		return fn(cmd.Context(), a)
	}
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// edit runs an admin-page edit: page check, the change, then save. The
// change's output is printed only once the save has succeeded. Inside a
// shell the change stays in memory until the session saves.
func (o *RootOptions) edit(cmd *cobra.Command, fn func(ctx context.Context, a *app) (any, func(io.Writer), error)) error {
	return o.withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.page(ctx, o.PageRole); err != nil {
			return err
		}
		data, text, err := fn(ctx, a)
		if err != nil {
			return err
		}
		if o.shell == nil {
			if err := a.console.Save(ctx); err != nil {
				return err
			}
		}
		return a.out.Success(data, text)
	})
}
