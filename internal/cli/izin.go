package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/console"
	"github.com/roach88/smaidrm/internal/document"
)

// NewIzinCommand creates the izin command group (teacher leave).
func NewIzinCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "izin",
		Short: "Teacher leave requests",
	}

	cmd.AddCommand(
		newIzinSubmitCommand(rootOpts),
		newIzinAddCommand(rootOpts),
		newIzinUpdateCommand(rootOpts),
		newIzinRemoveCommand(rootOpts),
		newIzinStatusCommand(rootOpts),
		newIzinListCommand(rootOpts),
	)

	return cmd
}

type leaveFlags struct {
	Name      string
	Subject   string
	Reason    string
	Date      string
	TimeRange string
	Status    string
}

func (f *leaveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "nama", "", "teacher name")
	cmd.Flags().StringVar(&f.Subject, "mapel", "", "subject")
	cmd.Flags().StringVar(&f.Reason, "alasan", "", "reason")
	cmd.Flags().StringVar(&f.Date, "tanggal", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.TimeRange, "waktu", "", "time range, e.g. 07:00 - 11:00")
	cmd.Flags().StringVar(&f.Status, "status", "", "pending, approved or rejected")
}

// apply overlays the flags the user set onto lr.
func (f *leaveFlags) apply(cmd *cobra.Command, lr document.LeaveRequest) document.LeaveRequest {
	changed := cmd.Flags().Changed
	if changed("nama") {
		lr.Name = f.Name
	}
	if changed("mapel") {
		lr.Subject = f.Subject
	}
	if changed("alasan") {
		lr.Reason = f.Reason
	}
	if changed("tanggal") {
		lr.Date = f.Date
	}
	if changed("waktu") {
		lr.TimeRange = f.TimeRange
	}
	if changed("status") {
		lr.Status = document.LeaveStatus(f.Status)
	}
	return lr
}

func parseLeaveID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid leave id %q", arg))
	}
	return id, nil
}

func renderLeave(w io.Writer, lr document.LeaveRequest) {
	fmt.Fprintf(w, "#%d  %s  %s - %s - %s | %s | %s\n",
		lr.ID, lr.Date, lr.Name, lr.Subject, lr.Reason, lr.TimeRange, lr.Status.Label())
}

// SubmitOptions holds flags for izin submit.
type SubmitOptions struct {
	*RootOptions
	Form console.LeaveForm
}

func newIzinSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a leave request from the public form",
		Long: `Submit a leave request the way a teacher does on the public board.

The request is stored as pending and saved immediately. The output carries
the message to forward to the principal over WhatsApp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.console.SubmitLeave(ctx, opts.Form)
				if err != nil {
					return err
				}
				return a.out.Success(r, func(w io.Writer) {
					fmt.Fprintln(w, "Pengajuan izin tersimpan:")
					renderLeave(w, r.Request)
					fmt.Fprintf(w, "\nKirim ke WhatsApp %s:\n\n%s\n", r.To, r.Message)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Form.Name, "nama", "", "teacher name")
	cmd.Flags().StringVar(&opts.Form.Subject, "mapel", "", "subject")
	cmd.Flags().StringVar(&opts.Form.Reason, "alasan", "", "reason")
	cmd.Flags().StringVar(&opts.Form.Date, "tanggal", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Form.Note, "keterangan", "", "note for the principal")

	return cmd
}

func newIzinAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &leaveFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a leave request (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				stored, err := a.console.AddLeave(ctx, flags.apply(cmd, document.LeaveRequest{}))
				if err != nil {
					return nil, nil, err
				}
				return stored, func(w io.Writer) {
					fmt.Fprint(w, "Added ")
					renderLeave(w, stored)
				}, nil
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newIzinUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &leaveFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a leave request (admin)",
		Long: `Change fields of a leave request. Only the flags given are changed;
the rest of the request is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeaveID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				doc := a.board.Snapshot()
				current := document.LeaveRequest{ID: id}
				if i := doc.IndexOfLeave(id); i >= 0 {
					current = doc.Leave[i]
				}
				updated := flags.apply(cmd, current)
				if err := a.console.UpdateLeave(ctx, id, updated); err != nil {
					return nil, nil, err
				}
				return updated, func(w io.Writer) {
					fmt.Fprint(w, "Updated ")
					renderLeave(w, updated)
				}, nil
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newIzinRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a leave request (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeaveID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.RemoveLeave(ctx, id); err != nil {
					return nil, nil, err
				}
				return map[string]int64{"removed": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Removed leave request #%d\n", id)
				}, nil
			})
		},
	}
}

func newIzinStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|approved|rejected>",
		Short: "Approve or reject a leave request (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeaveID(args[0])
			if err != nil {
				return err
			}
			status := document.LeaveStatus(args[1])
			return rootOpts.edit(cmd, func(ctx context.Context, a *app) (any, func(io.Writer), error) {
				if err := a.console.SetLeaveStatus(ctx, id, status); err != nil {
					return nil, nil, err
				}
				return map[string]any{"id": id, "status": status}, func(w io.Writer) {
					fmt.Fprintf(w, "Leave request #%d: %s\n", id, status.Label())
				}, nil
			})
		},
	}
}

func newIzinListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every leave request (kepsek or admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, rootOpts.PageRole); err != nil {
					return err
				}
				leave, err := a.console.Leave(ctx)
				if err != nil {
					return err
				}
				return a.out.Success(leave, func(w io.Writer) {
					if len(leave) == 0 {
						fmt.Fprintln(w, "Belum ada data guru izin")
						return
					}
					for _, lr := range leave {
						renderLeave(w, lr)
					}
				})
			})
		},
	}
}
