package console

import (
	"context"
	"fmt"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/backup"
)

// Export is a ready-to-write backup.
type Export struct {
	Envelope backup.Envelope
	FileName string
	Encoded  []byte
}

// ExportBackup snapshots the current document, pending edits included.
func (c *Console) ExportBackup(ctx context.Context) (Export, error) {
	s, err := c.require(ctx, access.RoleAdmin, "export backup")
	if err != nil {
		return Export{}, err
	}

	now := c.clock.Now()
	env, err := backup.Export(c.board.Snapshot(), string(s.Level), now)
	if err != nil {
		return Export{}, err
	}
	encoded, err := backup.Encode(env)
	if err != nil {
		return Export{}, err
	}
	c.record(ctx, s, "Backup data dibuat oleh %s", s.Name)
	return Export{Envelope: env, FileName: backup.FileName(now), Encoded: encoded}, nil
}

// PreviewBackup verifies raw and summarizes it.
func (c *Console) PreviewBackup(ctx context.Context, raw []byte) (backup.Summary, error) {
	if _, err := c.require(ctx, access.RoleAdmin, "preview backup"); err != nil {
		return backup.Summary{}, err
	}
	return backup.Preview(raw)
}

// RestoreBackup replaces the whole document with the one in raw. Nothing
// changes unless confirmed is true and raw verifies.
func (c *Console) RestoreBackup(ctx context.Context, raw []byte, confirmed bool) (backup.Summary, error) {
	s, err := c.require(ctx, access.RoleAdmin, "restore backup")
	if err != nil {
		return backup.Summary{}, err
	}
	if !confirmed {
		return backup.Summary{}, fmt.Errorf("restore: %w", ErrNotConfirmed)
	}

	summary, doc, err := backup.Verify(raw)
	if err != nil {
		return backup.Summary{}, err
	}
	if err := c.board.Replace(ctx, doc); err != nil {
		return backup.Summary{}, err
	}

	c.logger.Info().Str("exported", summary.Exported).Str("checksum", summary.Checksum).Msg("backup restored")
	c.record(ctx, s, "Data direstore dari backup oleh %s", s.Name)
	return summary, nil
}

// Reset puts the factory document back and empties the activity log. The
// reset itself becomes the first entry of the fresh log. confirmation must
// be ResetWord.
func (c *Console) Reset(ctx context.Context, confirmation string) error {
	s, err := c.require(ctx, access.RoleAdmin, "reset data")
	if err != nil {
		return err
	}
	if confirmation != ResetWord {
		return fmt.Errorf("reset: type %s to confirm: %w", ResetWord, ErrNotConfirmed)
	}

	if err := c.board.Replace(ctx, backup.ResetToDefault(c.clock.Now())); err != nil {
		return err
	}
	if err := c.log.Clear(ctx); err != nil {
		return err
	}
	c.logger.Warn().Str("by", s.Name).Msg("all data reset")
	c.record(ctx, s, "SEMUA DATA DIRESET oleh %s", s.Name)
	return nil
}
