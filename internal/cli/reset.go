package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/smaidrm/internal/console"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Confirm string
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore factory data and clear the activity log (admin)",
		Long: `Replace every roster, the principal card, the agenda and the banner
with the factory defaults, and clear the activity log.

This cannot be undone. Export a backup first.

Example:
  smaidrm reset --confirm RESET`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, opts.PageRole); err != nil {
					return err
				}
				if err := a.console.Reset(ctx, opts.Confirm); err != nil {
					return err
				}
				return a.out.Success(map[string]bool{"reset": true}, func(w io.Writer) {
					fmt.Fprintln(w, "All data reset to defaults")
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Confirm, "confirm", "", fmt.Sprintf("type %s to confirm", console.ResetWord))

	return cmd
}
