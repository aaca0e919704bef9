package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/backup"
)

// NewBackupCommand creates the backup command group.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, inspect and restore checksummed backups (admin)",
		Long: `Export, inspect and restore checksummed backups.

A backup holds the whole board and a checksum over its content. Files
whose content was changed after export are refused.`,
	}

	cmd.AddCommand(newBackupExportCommand(rootOpts))
	cmd.AddCommand(newBackupPreviewCommand(rootOpts))
	cmd.AddCommand(newBackupRestoreCommand(rootOpts))

	return cmd
}

// ExportOptions holds flags for backup export.
type ExportOptions struct {
	*RootOptions
	Output string
}

func newBackupExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, opts.PageRole); err != nil {
					return err
				}
				exp, err := a.console.ExportBackup(ctx)
				if err != nil {
					return err
				}
				path := opts.Output
				if path == "" {
					path = exp.FileName
				}
				if err := os.WriteFile(path, exp.Encoded, 0o600); err != nil {
					return WrapExitError(ExitCommandError, "failed to write backup", err)
				}
				a.out.VerboseLog("wrote %d bytes", len(exp.Encoded))

				data := map[string]string{
					"path":     path,
					"exported": exp.Envelope.Exported,
					"checksum": exp.Envelope.Checksum,
				}
				return a.out.Success(data, func(w io.Writer) {
					fmt.Fprintf(w, "Backup written to %s (checksum %s)\n", path, exp.Envelope.Checksum)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default smaidrm-backup-<date>.json)")

	return cmd
}

// readBackup reads path in the background and returns its bytes. Content
// errors are left to the console, which checks the role first.
func readBackup(ctx context.Context, path string) ([]byte, error) {
	select {
	case res := <-backup.ReadFile(ctx, path):
		if res.Raw == nil && res.Err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read backup", res.Err)
		}
		return res.Raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newBackupPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Verify a backup file and summarize it without restoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, rootOpts.PageRole); err != nil {
					return err
				}
				raw, err := readBackup(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := a.console.PreviewBackup(ctx, raw)
				if err != nil {
					return err
				}
				return a.out.Success(s, func(w io.Writer) { renderSummary(w, s) })
			})
		},
	}
}

// RestoreOptions holds flags for backup restore.
type RestoreOptions struct {
	*RootOptions
	Yes bool
}

func newBackupRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RestoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all board data with a backup",
		Long: `Replace all board data with the content of a backup file.

Every current entry is overwritten. Run "backup preview" first and pass
--yes to confirm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, opts.PageRole); err != nil {
					return err
				}
				raw, err := readBackup(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := a.console.RestoreBackup(ctx, raw, opts.Yes)
				if err != nil {
					return err
				}
				return a.out.Success(s, func(w io.Writer) {
					fmt.Fprintf(w, "Restored backup from %s\n", args[0])
					renderSummary(w, s)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm replacing all data")

	return cmd
}

func renderSummary(w io.Writer, s backup.Summary) {
	fmt.Fprintf(w, "Dibuat:              %s oleh %s\n", s.Exported, s.ExportedBy)
	fmt.Fprintf(w, "Versi:               %s\n", s.Version)
	fmt.Fprintf(w, "Terakhir diperbarui: %s\n", s.LastUpdate)
	fmt.Fprintf(w, "Guru izin:           %d\n", s.Leave)
	fmt.Fprintf(w, "Guru piket:          %d\n", s.Duty)
	fmt.Fprintf(w, "Agenda:              %d\n", s.Agenda)
	fmt.Fprintf(w, "Checksum:            %s\n", s.Checksum)
}
