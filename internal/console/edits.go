package console

import (
	"context"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/document"
)

// Duty roster, agenda, principal status, banner and save need at least
// kepsek. Leave-request administration and settings need admin.

func (c *Console) AddDuty(ctx context.Context, a document.DutyAssignment) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit duty roster"); err != nil {
		return err
	}
	return c.board.AddDuty(a)
}

func (c *Console) UpdateDuty(ctx context.Context, i int, a document.DutyAssignment) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit duty roster"); err != nil {
		return err
	}
	return c.board.UpdateDuty(i, a)
}

func (c *Console) RemoveDuty(ctx context.Context, i int) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit duty roster"); err != nil {
		return err
	}
	return c.board.RemoveDuty(i)
}

func (c *Console) ClearDuty(ctx context.Context) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit duty roster"); err != nil {
		return err
	}
	c.board.ClearDuty()
	return nil
}

func (c *Console) AddAgenda(ctx context.Context, item document.AgendaItem) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit agenda"); err != nil {
		return err
	}
	return c.board.AddAgenda(item)
}

func (c *Console) UpdateAgenda(ctx context.Context, i int, item document.AgendaItem) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit agenda"); err != nil {
		return err
	}
	return c.board.UpdateAgenda(i, item)
}

func (c *Console) RemoveAgenda(ctx context.Context, i int) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit agenda"); err != nil {
		return err
	}
	return c.board.RemoveAgenda(i)
}

func (c *Console) ClearAgenda(ctx context.Context) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit agenda"); err != nil {
		return err
	}
	c.board.ClearAgenda()
	return nil
}

func (c *Console) SetPrincipal(ctx context.Context, p document.PrincipalStatus) error {
	if _, err := c.require(ctx, access.RoleKepsek, "set principal status"); err != nil {
		return err
	}
	return c.board.SetPrincipal(p)
}

func (c *Console) SetAnnouncement(ctx context.Context, a document.Announcement) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit announcement"); err != nil {
		return err
	}
	return c.board.SetAnnouncement(a)
}

func (c *Console) SetAnnouncementActive(ctx context.Context, active bool) error {
	if _, err := c.require(ctx, access.RoleKepsek, "edit announcement"); err != nil {
		return err
	}
	c.board.SetAnnouncementActive(active)
	return nil
}

// Save persists pending edits.
func (c *Console) Save(ctx context.Context) error {
	if _, err := c.require(ctx, access.RoleKepsek, "save"); err != nil {
		return err
	}
	return c.board.Save(ctx)
}

func (c *Console) AddLeave(ctx context.Context, lr document.LeaveRequest) (document.LeaveRequest, error) {
	if _, err := c.require(ctx, access.RoleAdmin, "add leave request"); err != nil {
		return document.LeaveRequest{}, err
	}
	return c.board.AddLeave(lr)
}

func (c *Console) UpdateLeave(ctx context.Context, id int64, lr document.LeaveRequest) error {
	if _, err := c.require(ctx, access.RoleAdmin, "update leave request"); err != nil {
		return err
	}
	return c.board.UpdateLeave(id, lr)
}

func (c *Console) RemoveLeave(ctx context.Context, id int64) error {
	if _, err := c.require(ctx, access.RoleAdmin, "remove leave request"); err != nil {
		return err
	}
	return c.board.RemoveLeave(id)
}

func (c *Console) SetLeaveStatus(ctx context.Context, id int64, status document.LeaveStatus) error {
	if _, err := c.require(ctx, access.RoleAdmin, "change leave status"); err != nil {
		return err
	}
	return c.board.SetLeaveStatus(id, status)
}

func (c *Console) SetWhatsApp(ctx context.Context, number string) error {
	if _, err := c.require(ctx, access.RoleAdmin, "change settings"); err != nil {
		return err
	}
	return c.board.SetWhatsApp(number)
}
