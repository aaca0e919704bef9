package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/console"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the public board",
		Long: `Print the public board: today's teacher leave, the duty roster, the
principal's status, the agenda and the announcement banner.

No sign-in is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				v, err := a.console.Public(ctx)
				if err != nil {
					return err
				}
				return a.out.Success(v, func(w io.Writer) { renderPublic(w, v) })
			})
		},
	}
}

func renderPublic(w io.Writer, v console.PublicView) {
	fmt.Fprintf(w, "PAPAN INFORMASI SMAI DRM - %s\n", v.Date)
	if v.Announcement != nil {
		fmt.Fprintf(w, "\n[%s] %s\n", v.Announcement.Severity, v.Announcement.Message)
	}

	fmt.Fprintf(w, "\nGuru Izin Hari Ini (%d)\n", len(v.LeaveToday))
	if len(v.LeaveToday) == 0 {
		fmt.Fprintln(w, "  Tidak ada guru izin hari ini")
	}
	for _, lr := range v.LeaveToday {
		fmt.Fprintf(w, "  %s - %s - %s | %s | %s\n", lr.Name, lr.Subject, lr.Reason, lr.TimeRange, lr.Status.Label())
	}

	fmt.Fprintf(w, "\nGuru Piket (%d)\n", len(v.Duty))
	if len(v.Duty) == 0 {
		fmt.Fprintln(w, "  Belum ada jadwal piket hari ini")
	}
	for _, d := range v.Duty {
		fmt.Fprintf(w, "  %s - %s\n", d.Name, d.Subject)
	}

	fmt.Fprintln(w, "\nKepala Sekolah")
	fmt.Fprintf(w, "  %s: %s\n", v.Principal.Name, v.Principal.Status.Label())
	fmt.Fprintf(w, "  %s\n", v.Principal.Detail())

	fmt.Fprintf(w, "\nAgenda (%d)\n", len(v.Agenda))
	if len(v.Agenda) == 0 {
		fmt.Fprintln(w, "  Tidak ada agenda hari ini")
	}
	for _, item := range v.Agenda {
		fmt.Fprintf(w, "  %s  %s\n", item.TimeRange, item.Activity)
	}

	fmt.Fprintf(w, "\nTerakhir diperbarui: %s\n", v.LastUpdate)
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard counts (kepsek or admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, rootOpts.PageRole); err != nil {
					return err
				}
				s, err := a.console.Stats(ctx)
				if err != nil {
					return err
				}
				return a.out.Success(s, func(w io.Writer) {
					fmt.Fprintf(w, "Guru izin:           %d (%d hari ini, %d menunggu)\n", s.Leave, s.LeaveToday, s.Pending)
					fmt.Fprintf(w, "Guru piket:          %d\n", s.Duty)
					fmt.Fprintf(w, "Agenda:              %d\n", s.Agenda)
					fmt.Fprintf(w, "Terakhir diperbarui: %s\n", s.LastUpdate)
				})
			})
		},
	}
}

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print recent activity (kepsek or admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, opts.PageRole); err != nil {
					return err
				}
				if opts.Limit < 1 {
					return NewExitError(ExitCommandError, "--limit must be at least 1")
				}
				entries, err := a.console.Activity(ctx, opts.Limit)
				if err != nil {
					return err
				}
				return a.out.Success(entries, func(w io.Writer) { renderActivity(w, entries) })
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "number of entries, newest first (the log keeps the last 100)")

	return cmd
}

func renderActivity(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Belum ada aktivitas")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s\n", e.Timestamp, e.User, e.Action)
	}
}

// NewBannerCommand creates the banner command.
func NewBannerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Hide or show the announcement banner on this board",
	}

	toggle := func(use string, hidden bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: use + " the banner",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
					if err := a.console.HideBanner(ctx, hidden); err != nil {
						return err
					}
					return a.out.Success(map[string]bool{"hidden": hidden}, func(w io.Writer) {
						if hidden {
							fmt.Fprintln(w, "Banner hidden")
						} else {
							fmt.Fprintln(w, "Banner shown")
						}
					})
				})
			},
		}
	}
	cmd.AddCommand(toggle("hide", true), toggle("show", false))

	return cmd
}
