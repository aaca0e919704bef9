package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/document"
)

// Rows are addressed by their 1-based position as printed by show.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid position %q: must be 1 or more", arg))
	}
	return n - 1, nil
}

// NewPiketCommand creates the piket command group (duty roster).
func NewPiketCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "piket",
		Short: "Duty roster (kepsek or admin)",
	}

	var name, subject string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a teacher to the duty roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				d := document.DutyAssignment{Name: name, Subject: subject}
				if err := a.console.AddDuty(ctx, d); err != nil {
					return nil, nil, err
				}
				return d, func(w io.Writer) { fmt.Fprintf(w, "Added %s - %s\n", d.Name, d.Subject) }, nil
			})
		},
	}
	add.Flags().StringVar(&name, "nama", "", "teacher name")
	add.Flags().StringVar(&subject, "mapel", "", "subject")

	update := &cobra.Command{
		Use:   "update <position>",
		Short: "Replace a duty roster entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				d := document.DutyAssignment{Name: name, Subject: subject}
				if err := a.console.UpdateDuty(ctx, i, d); err != nil {
					return nil, nil, err
				}
				return d, func(w io.Writer) { fmt.Fprintf(w, "Updated %d: %s - %s\n", i+1, d.Name, d.Subject) }, nil
			})
		},
	}
	update.Flags().StringVar(&name, "nama", "", "teacher name")
	update.Flags().StringVar(&subject, "mapel", "", "subject")

	remove := &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove a duty roster entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.RemoveDuty(ctx, i); err != nil {
					return nil, nil, err
				}
				return map[string]int{"removed": i + 1}, func(w io.Writer) { fmt.Fprintf(w, "Removed duty entry %d\n", i+1) }, nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the duty roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.ClearDuty(ctx); err != nil {
					return nil, nil, err
				}
				return map[string]bool{"cleared": true}, func(w io.Writer) { fmt.Fprintln(w, "Duty roster cleared") }, nil
			})
		},
	}

	cmd.AddCommand(add, update, remove, clearCmd)
	return cmd
}

// NewAgendaCommand creates the agenda command group.
func NewAgendaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Today's agenda (kepsek or admin)",
	}

	var timeRange, activity string
	add := &cobra.Command{
		Use:   "add",
		Short: "Append an agenda item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				item := document.AgendaItem{TimeRange: timeRange, Activity: activity}
				if err := a.console.AddAgenda(ctx, item); err != nil {
					return nil, nil, err
				}
				return item, func(w io.Writer) { fmt.Fprintf(w, "Added %s  %s\n", item.TimeRange, item.Activity) }, nil
			})
		},
	}
	add.Flags().StringVar(&timeRange, "waktu", "", "time, e.g. 07:00 - 08:00")
	add.Flags().StringVar(&activity, "kegiatan", "", "activity")

	update := &cobra.Command{
		Use:   "update <position>",
		Short: "Replace an agenda item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				item := document.AgendaItem{TimeRange: timeRange, Activity: activity}
				if err := a.console.UpdateAgenda(ctx, i, item); err != nil {
					return nil, nil, err
				}
				return item, func(w io.Writer) { fmt.Fprintf(w, "Updated %d: %s  %s\n", i+1, item.TimeRange, item.Activity) }, nil
			})
		},
	}
	update.Flags().StringVar(&timeRange, "waktu", "", "time, e.g. 07:00 - 08:00")
	update.Flags().StringVar(&activity, "kegiatan", "", "activity")

	remove := &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove an agenda item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.RemoveAgenda(ctx, i); err != nil {
					return nil, nil, err
				}
				return map[string]int{"removed": i + 1}, func(w io.Writer) { fmt.Fprintf(w, "Removed agenda item %d\n", i+1) }, nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the agenda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.ClearAgenda(ctx); err != nil {
					return nil, nil, err
				}
				return map[string]bool{"cleared": true}, func(w io.Writer) { fmt.Fprintln(w, "Agenda cleared") }, nil
			})
		},
	}

	cmd.AddCommand(add, update, remove, clearCmd)
	return cmd
}

// PrincipalOptions holds flags for kepsek set.
type PrincipalOptions struct {
	*RootOptions
	Name       string
	Status     string
	Note       string
	Location   string
	ReturnTime string
}

// NewKepsekCommand creates the kepsek command group (principal status).
func NewKepsekCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrincipalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kepsek",
		Short: "Principal status (kepsek or admin)",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Update the principal's status card",
		Long: `Update the principal's status card. Flags not given keep their
current value.

Statuses: hadir, rapat, dinas, cuti, sakit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				p := a.board.Snapshot().Principal
				changed := cmd.Flags().Changed
				if changed("nama") {
					p.Name = opts.Name
				}
				if changed("status") {
					p.Status = document.PrincipalState(opts.Status)
				}
				if changed("keterangan") {
					p.Note = opts.Note
				}
				if changed("lokasi") {
					p.Location = opts.Location
				}
				if changed("kembali") {
					p.ReturnTime = opts.ReturnTime
				}
				if err := a.console.SetPrincipal(ctx, p); err != nil {
					return nil, nil, err
				}
				p = a.board.Snapshot().Principal
				return p, func(w io.Writer) {
					fmt.Fprintf(w, "%s: %s\n  %s\n", p.Name, p.Status.Label(), p.Detail())
				}, nil
			})
		},
	}
	set.Flags().StringVar(&opts.Name, "nama", "", "principal's name")
	set.Flags().StringVar(&opts.Status, "status", "", "hadir|rapat|dinas|cuti|sakit")
	set.Flags().StringVar(&opts.Note, "keterangan", "", "note")
	set.Flags().StringVar(&opts.Location, "lokasi", "", "location")
	set.Flags().StringVar(&opts.ReturnTime, "kembali", "", "expected return time")

	cmd.AddCommand(set)
	return cmd
}

// AnnouncementOptions holds flags for pengumuman set.
type AnnouncementOptions struct {
	*RootOptions
	Message  string
	Severity string
	Active   bool
}

// NewPengumumanCommand creates the pengumuman command group (banner).
func NewPengumumanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnnouncementOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pengumuman",
		Short: "Announcement banner (kepsek or admin)",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change the banner text and type",
		Long: `Change the banner. Flags not given keep their current value.

Types: info, warning, danger, success. Messages are at most 200
characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				ann := a.board.Snapshot().Announcement
				changed := cmd.Flags().Changed
				if changed("pesan") {
					ann.Message = opts.Message
				}
				if changed("tipe") {
					ann.Severity = document.Severity(opts.Severity)
				}
				if changed("aktif") {
					ann.Active = opts.Active
				}
				if err := a.console.SetAnnouncement(ctx, ann); err != nil {
					return nil, nil, err
				}
				return ann, func(w io.Writer) { renderAnnouncement(w, ann) }, nil
			})
		},
	}
	set.Flags().StringVar(&opts.Message, "pesan", "", "banner message")
	set.Flags().StringVar(&opts.Severity, "tipe", "", "info|warning|danger|success")
	set.Flags().BoolVar(&opts.Active, "aktif", true, "show the banner")

	toggle := func(use string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: "Turn the banner " + use,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
					if err := a.console.SetAnnouncementActive(ctx, active); err != nil {
						return nil, nil, err
					}
					ann := a.board.Snapshot().Announcement
					return ann, func(w io.Writer) { renderAnnouncement(w, ann) }, nil
				})
			},
		}
	}

	cmd.AddCommand(set, toggle("on", true), toggle("off", false))
	return cmd
}

func renderAnnouncement(w io.Writer, ann document.Announcement) {
	state := "off"
	if ann.Active {
		state = "on"
	}
	fmt.Fprintf(w, "Banner %s [%s] %s\n", state, ann.Severity, ann.Message)
}

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Board settings (admin)",
	}

	whatsapp := &cobra.Command{
		Use:   "whatsapp <number>",
		Short: "Set the WhatsApp number leave requests are sent to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := args[0]
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.SetWhatsApp(ctx, number); err != nil {
					return nil, nil, err
				}
				s := a.board.Snapshot().Settings
				return s, func(w io.Writer) { fmt.Fprintf(w, "WhatsApp number set to %s\n", s.WhatsAppNumber) }, nil
			})
		},
	}

	cmd.AddCommand(whatsapp)
	return cmd
}
