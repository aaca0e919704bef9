package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/smaidrm/internal/access"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login <guru|kepsek|admin>",
		Short: "Sign in",
		Long: `Sign in as a teacher, the principal or the admin.

Teachers need no password. The principal and the admin are asked for one
without echo unless --password is given.

Examples:
  smaidrm login guru
  smaidrm login admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runLogin(opts *LoginOptions, cmd *cobra.Command, roleName string) error {
	role, err := access.ParseRole(roleName)
	if err != nil {
		return err
	}

	password := opts.Password
	if role != access.RoleGuru && !cmd.Flags().Changed("password") {
		password, err = opts.promptPassword(cmd.ErrOrStderr())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read password", err)
		}
	}

	return opts.withApp(cmd, func(ctx context.Context, a *app) error {
		s, err := a.gate.Login(ctx, role, password)
		if err != nil {
			return err
		}
		return a.out.Success(s, func(w io.Writer) {
			fmt.Fprintf(w, "Signed in as %s (%s)\n", s.Name, s.Level)
		})
	})
}

func (o *RootOptions) promptPassword(prompt io.Writer) (string, error) {
	read := o.ReadPassword
	if read == nil {
		read = term.ReadPassword
	}
	fmt.Fprint(prompt, "Password: ")
	pwd, err := read(int(os.Stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(pwd), "\r\n"), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.gate.Logout(ctx); err != nil {
					return err
				}
				return a.out.Success(map[string]bool{"signedOut": true}, func(w io.Writer) {
					fmt.Fprintln(w, "Signed out")
				})
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.page(ctx, rootOpts.PageRole); err != nil {
					return err
				}
				s, ok, err := a.gate.Current(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return &access.Error{Code: access.ErrCodeNoSession, Message: "not signed in"}
				}
				return a.out.Success(s, func(w io.Writer) {
					fmt.Fprintf(w, "%s (%s), signed in %s\n", s.Name, s.Level, s.LoginTime)
				})
			})
		},
	}
}
