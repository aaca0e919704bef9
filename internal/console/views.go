package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/store"
)

// PublicView is what the public board shows.
type PublicView struct {
	Date         string                    `json:"tanggal"`
	LeaveToday   []document.LeaveRequest   `json:"guruIzin"`
	Duty         []document.DutyAssignment `json:"guruPiket"`
	Principal    document.PrincipalStatus  `json:"kepsek"`
	Agenda       []document.AgendaItem     `json:"agenda"`
	Announcement *document.Announcement    `json:"pengumuman,omitempty"`
	LastUpdate   string                    `json:"lastUpdate"`
}

// Public renders the board for anyone. The banner is omitted when it is
// inactive or the viewer hid it; its color always follows its severity.
func (c *Console) Public(ctx context.Context) (PublicView, error) {
	hidden, err := c.BannerHidden(ctx)
	if err != nil {
		return PublicView{}, err
	}

	doc := c.board.Snapshot()
	today := c.board.Today()
	v := PublicView{
		Date:       today,
		LeaveToday: doc.LeaveOn(today),
		Duty:       doc.Duty,
		Principal:  doc.Principal,
		Agenda:     doc.Agenda,
		LastUpdate: doc.Meta.LastUpdate,
	}
	if doc.Announcement.Active && !hidden {
		a := doc.Announcement
		a.Color = a.Severity.Color()
		v.Announcement = &a
	}
	return v, nil
}

// BannerHidden reports whether the viewer dismissed the banner.
func (c *Console) BannerHidden(ctx context.Context) (bool, error) {
	raw, err := c.ns.Get(ctx, store.KeyHideAnnouncement)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read banner preference: %w", err)
	}
	return string(raw) == "true", nil
}

// HideBanner records the viewer's banner preference. It needs no session.
func (c *Console) HideBanner(ctx context.Context, hidden bool) error {
	var err error
	if hidden {
		err = c.ns.Put(ctx, store.KeyHideAnnouncement, []byte("true"))
	} else {
		err = c.ns.Delete(ctx, store.KeyHideAnnouncement)
	}
	if err != nil {
		return fmt.Errorf("save banner preference: %w", err)
	}
	return nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	document.Counts
	LastUpdate string `json:"lastUpdate"`
	Unsaved    bool   `json:"unsaved"`
}

// Stats returns roster counts for the dashboard.
func (c *Console) Stats(ctx context.Context) (Stats, error) {
	if _, err := c.require(ctx, access.RoleKepsek, "view dashboard"); err != nil {
		return Stats{}, err
	}
	return Stats{
		Counts:     c.board.Counts(),
		LastUpdate: c.board.Snapshot().Meta.LastUpdate,
		Unsaved:    c.board.Dirty(),
	}, nil
}

// Leave lists every leave request, newest entry last.
func (c *Console) Leave(ctx context.Context) ([]document.LeaveRequest, error) {
	if _, err := c.require(ctx, access.RoleKepsek, "list leave requests"); err != nil {
		return nil, err
	}
	return c.board.Snapshot().Leave, nil
}

// Activity returns the n most recent audit entries.
func (c *Console) Activity(ctx context.Context, n int) ([]activity.Entry, error) {
	if _, err := c.require(ctx, access.RoleKepsek, "view activity log"); err != nil {
		return nil, err
	}
	return c.log.Recent(ctx, n)
}
