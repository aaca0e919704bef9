package console

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/smaidrm/internal/document"
)

// LeaveForm is the public "ajukan izin" form.
type LeaveForm struct {
	Name    string
	Subject string
	Reason  string
	Date    string
	Note    string
}

// Receipt is what the teacher gets back after submitting the form:
// the stored request and the message to forward to the principal.
type Receipt struct {
	Request document.LeaveRequest `json:"izin"`
	To      string                `json:"whatsappNumber"`
	Message string                `json:"pesan"`
}

// SubmitLeave files a pending leave request from the public form and saves
// it at once. No session is needed.
func (c *Console) SubmitLeave(ctx context.Context, f LeaveForm) (Receipt, error) {
	now := c.clock.Now()
	lr := document.LeaveRequest{
		Name:      cases.Upper(language.Indonesian).String(formField(f.Name)),
		Subject:   formField(f.Subject),
		Reason:    formField(f.Reason),
		Date:      formField(f.Date),
		TimeRange: timeRange(now.Hour()),
		Status:    document.StatusPending,
	}

	stored, err := c.board.AddLeave(lr)
	if err != nil {
		return Receipt{}, err
	}
	if err := c.board.Save(ctx); err != nil {
		// leave nothing half-submitted in memory
		_ = c.board.RemoveLeave(stored.ID)
		return Receipt{}, err
	}
	c.logger.Info().Int64("id", stored.ID).Str("tanggal", stored.Date).Msg("leave request submitted")

	note := formField(f.Note)
	if note == "" {
		note = "-"
	}
	return Receipt{
		Request: stored,
		To:      c.board.Snapshot().Settings.WhatsAppNumber,
		Message: fmt.Sprintf(
			"*PENGAJUAN IZIN GURU - SMAI DRM*\n\nNama: %s\nMata Pelajaran: %s\nAlasan Izin: %s\nTanggal: %s\nKeterangan: %s\n\n_Dikirim dari Papan Informasi Digital_",
			formField(f.Name), stored.Subject, stored.Reason, stored.Date, note),
	}, nil
}

// formField trims typed text and composes it to NFC, so the same name
// typed on two keyboards is stored the same way.
func formField(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// timeRange is the four-hour window starting at hour, wrapping at midnight.
func timeRange(hour int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", hour, (hour+4)%24)
}
