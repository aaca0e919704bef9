package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/smaidrm/internal/document"
)

// Result is the outcome of ReadFile.
type Result struct {
	Path     string
	Raw      []byte
	Summary  Summary
	Document document.Document
	Err      error
}

// ReadFile reads and verifies a backup file in the background. The channel
// yields exactly one Result and is then closed. If ctx is done before the
// file has been verified the Result carries ctx.Err() and no document.
func ReadFile(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- readFile(ctx, path)
	}()
	return out
}

func readFile(ctx context.Context, path string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Err: err}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read backup: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Err: err}
	}

	env, doc, err := verify(raw)
	if err != nil {
		return Result{Path: path, Raw: raw, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Err: err}
	}
	return Result{
		Path:     path,
		Raw:      raw,
		Summary:  summarize(env, doc),
		Document: doc,
	}
}
