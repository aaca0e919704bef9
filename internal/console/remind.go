package console

import (
	"context"
	"time"
)

// Remind calls notify every interval while the board has unsaved edits.
// It returns when ctx is done.
func (c *Console) Remind(ctx context.Context, interval time.Duration, notify func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.board.Dirty() {
				c.logger.Debug().Msg("unsaved changes")
				notify()
			}
		}
	}
}
