package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smaidrm/internal/config"
)

// syncBuffer is a bytes.Buffer that can be read while the shell writes.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func (h *cliHarness) shell(in io.Reader, stdout, stderr io.Writer) int {
	h.t.Helper()
	opts := &RootOptions{
		Clock: h.clk,
		IDs:   h.ids,
		ReadPassword: func(int) ([]byte, error) {
			return []byte(h.password + "\n"), nil
		},
		Stdin: in,
	}
	return execute(context.Background(), opts, []string{"--db", h.db, "shell"}, stdout, stderr)
}

func TestShell_SavesOnExit(t *testing.T) {
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	var stdout, stderr bytes.Buffer
	code := h.shell(strings.NewReader("piket clear\nagenda clear\nexit\n"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "Saved")

	v := h.public()
	assert.Empty(t, v.Duty)
	assert.Empty(t, v.Agenda)
}

func TestShell_SavesAtEndOfInput(t *testing.T) {
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	var stdout, stderr bytes.Buffer
	code := h.shell(strings.NewReader("piket clear\n"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	assert.Empty(t, h.public().Duty)
}

func TestShell_EditsWaitForSave(t *testing.T) {
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	// Signing out before the end leaves nobody to save the pending edit.
	var stdout, stderr bytes.Buffer
	code := h.shell(strings.NewReader("piket clear\nlogout\nexit\n"), &stdout, &stderr)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr.String(), "unsaved changes were lost")

	assert.Len(t, h.public().Duty, 3)
}

func TestShell_SaveThenSignOut(t *testing.T) {
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	var stdout, stderr bytes.Buffer
	code := h.shell(strings.NewReader("piket clear\nsave\nlogout\nexit\n"), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	assert.Empty(t, h.public().Duty)
}

func TestShell_LineErrorsDoNotEndSession(t *testing.T) {
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	input := strings.Join([]string{
		"piket remove 9",
		"shell",
		`piket add --nama "Hendra Gunawan" --mapel Sejarah`,
		"exit",
	}, "\n")
	var stdout, stderr bytes.Buffer
	code := h.shell(strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stderr.String(), "E_NOT_FOUND")
	assert.Contains(t, stderr.String(), "already in a shell")

	assert.Len(t, h.public().Duty, 4)
}

func TestShell_RemindsWhileEditsArePending(t *testing.T) {
	t.Setenv(config.EnvReminderInterval, "10ms")
	h := newHarness(t)
	h.login("kepsek", "Drm84")

	in, w := io.Pipe()
	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() { done <- h.shell(in, &stdout, &stderr) }()

	_, err := io.WriteString(w, "show\n")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, stderr.String(), ReminderText)

	_, err = io.WriteString(w, "piket clear\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), ReminderText)
	}, 2*time.Second, 10*time.Millisecond)

	_, err = io.WriteString(w, "exit\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case code := <-done:
		assert.Equal(t, ExitSuccess, code, stderr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit")
	}
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"save", []string{"save"}},
		{"piket  clear", []string{"piket", "clear"}},
		{`pengumuman set --pesan "Libur nasional" --tipe danger`, []string{"pengumuman", "set", "--pesan", "Libur nasional", "--tipe", "danger"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitLine(tt.line)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
