package cli

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// ReminderText is printed while a shell holds unsaved edits.
const ReminderText = "Ada perubahan yang belum disimpan!"

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit the board interactively, saving on demand",
		Long: `Read commands from standard input, one per line, against a board that
stays open between them.

Edits made in the shell are kept in memory until "save" is typed or the
shell ends. While edits are pending a reminder is printed every
reminder_interval (config) or SMAIDRM_REMINDER_INTERVAL.

Shell commands:
  save          write pending edits
  exit, quit    save pending edits and leave
  anything else runs as "smaidrm <line>"

Example:
  smaidrm shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, rootOpts)
		},
	}
}

func runShell(cmd *cobra.Command, o *RootOptions) error {
	if o.shell != nil {
		return NewExitError(ExitCommandError, "already in a shell")
	}

	stdout := &lockedWriter{w: cmd.OutOrStdout()}
	stderr := &lockedWriter{w: cmd.ErrOrStderr()}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.console.Remind(ctx, a.cfg.ReminderInterval, func() {
			fmt.Fprintln(stderr, ReminderText)
		})
	}()
	defer wg.Wait()
	defer cancel()

	a.logger.Debug().Dur("reminder_interval", a.cfg.ReminderInterval).Msg("shell started")

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		fields, err := splitLine(sc.Text())
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return closeShell(ctx, a)
		case "save":
			if err := a.console.Save(ctx); err != nil {
				report(o, err, stdout, stderr)
				continue
			}
			fmt.Fprintln(stdout, "Saved")
			continue
		case "shell":
			fmt.Fprintln(stderr, "Error: already in a shell")
			continue
		}

		sub := &RootOptions{
			Clock:        o.Clock,
			IDs:          o.IDs,
			ReadPassword: o.ReadPassword,
			shell:        a,
		}
		line := newRootCommand(sub)
		line.SetArgs(fields)
		line.SetOut(stdout)
		line.SetErr(stderr)
		line.SetIn(cmd.InOrStdin())
		if err := line.ExecuteContext(ctx); err != nil {
			report(sub, err, stdout, stderr)
		}
	}
	if err := sc.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read commands", err)
	}
	return closeShell(ctx, a)
}

// closeShell saves pending edits when the shell ends.
func closeShell(ctx context.Context, a *app) error {
	if !a.board.Dirty() {
		return nil
	}
	if err := a.console.Save(ctx); err != nil {
		return WrapExitError(ExitFailure, "unsaved changes were lost", err)
	}
	fmt.Fprintln(a.out.Writer, "Saved")
	return nil
}

// splitLine splits a shell line into words. Double quotes group words
// that contain spaces.
func splitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = ' '
	r.LazyQuotes = true
	record, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse line: %w", err)
	}
	fields := record[:0]
	for _, f := range record {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// lockedWriter serializes writes from the shell and its reminder.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
