package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/clock"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string
	PageRole   string

	// Test seams; nil means the real thing.
	Clock        clock.Clock
	IDs          access.IDGenerator
	ReadPassword func(fd int) ([]byte, error)
	Stdin        io.Reader

	// shell is the open app of an interactive session; commands typed
	// into it reuse it instead of opening their own.
	shell *app
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the smaidrm CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smaidrm",
		Short: "SMAI DRM information board",
		Long: `Papan Informasi Digital SMAI DRM.

Shows teacher leave and duty rosters, the principal's status, the day's
agenda and the announcement banner, and lets teachers, the principal and
the admin edit them. Data lives in a local SQLite file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.PageRole != "" {
				if _, err := access.ParseRole(opts.PageRole); err != nil {
					return err
				}
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML or TOML config file")
	cmd.PersistentFlags().StringVar(&opts.PageRole, "page-role", "", "role the admin page was opened for; a different session is signed out")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewBannerCommand(opts))
	cmd.AddCommand(NewIzinCommand(opts))
	cmd.AddCommand(NewPiketCommand(opts))
	cmd.AddCommand(NewAgendaCommand(opts))
	cmd.AddCommand(NewKepsekCommand(opts))
	cmd.AddCommand(NewPengumumanCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr, or on stdout as a JSON envelope when
// --format json is in effect.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	return execute(ctx, opts, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if opts.Stdin != nil {
		cmd.SetIn(opts.Stdin)
	}

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	report(opts, err, stdout, stderr)
	return GetExitCode(err)
}

// report prints err the way the chosen format wants it.
func report(opts *RootOptions, err error, stdout, stderr io.Writer) {
	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Writer = stdout
	}
	_ = f.Error(errorCode(err), err.Error(), errorDetails(err))
}
