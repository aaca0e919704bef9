package board

import (
	"fmt"
	"time"

	"github.com/roach88/smaidrm/internal/document"
)

const timestampLayout = time.RFC3339

// AddLeave appends a leave request and returns it as stored. A zero ID is
// replaced by the current Unix millisecond; a taken ID moves past the
// largest one in use. An empty status becomes pending.
func (b *Board) AddLeave(lr document.LeaveRequest) (document.LeaveRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if lr.Status == "" {
		lr.Status = document.StatusPending
	}
	if err := document.Validate("leave request", lr); err != nil {
		return document.LeaveRequest{}, err
	}
	if lr.ID == 0 {
		lr.ID = b.clock.Now().UnixMilli()
	}
	if b.doc.IndexOfLeave(lr.ID) >= 0 {
		lr.ID = b.maxLeaveIDLocked() + 1
	}

	b.doc.Leave = append(b.doc.Leave, lr)
	b.dirty = true
	return lr, nil
}

func (b *Board) maxLeaveIDLocked() int64 {
	var highest int64
	for _, lr := range b.doc.Leave {
		if lr.ID > highest {
			highest = lr.ID
		}
	}
	return highest
}

// UpdateLeave replaces the fields of the leave request with id. The ID is
// kept; an empty status keeps the current one.
func (b *Board) UpdateLeave(id int64, lr document.LeaveRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.doc.IndexOfLeave(id)
	if i < 0 {
		return fmt.Errorf("leave request %d: %w", id, ErrNotFound)
	}
	lr.ID = id
	if lr.Status == "" {
		lr.Status = b.doc.Leave[i].Status
	}
	if err := document.Validate("leave request", lr); err != nil {
		return err
	}
	b.doc.Leave[i] = lr
	b.dirty = true
	return nil
}

// RemoveLeave deletes the leave request with id.
func (b *Board) RemoveLeave(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.doc.IndexOfLeave(id)
	if i < 0 {
		return fmt.Errorf("leave request %d: %w", id, ErrNotFound)
	}
	b.doc.Leave = append(b.doc.Leave[:i], b.doc.Leave[i+1:]...)
	b.dirty = true
	return nil
}

// SetLeaveStatus approves, rejects or reopens a leave request.
func (b *Board) SetLeaveStatus(id int64, status document.LeaveStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !status.Valid() {
		return &document.ValidationError{
			Record: "leave status",
			Fields: []document.FieldError{{
				Field: "status",
				Error: fmt.Sprintf("status must be one of [pending approved rejected], got %q", status),
			}},
		}
	}
	i := b.doc.IndexOfLeave(id)
	if i < 0 {
		return fmt.Errorf("leave request %d: %w", id, ErrNotFound)
	}
	b.doc.Leave[i].Status = status
	b.dirty = true
	return nil
}

// AddDuty appends a teacher to the duty roster.
func (b *Board) AddDuty(a document.DutyAssignment) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := document.Validate("duty assignment", a); err != nil {
		return err
	}
	b.doc.Duty = append(b.doc.Duty, a)
	b.dirty = true
	return nil
}

// UpdateDuty replaces the duty entry at index i.
func (b *Board) UpdateDuty(i int, a document.DutyAssignment) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.doc.Duty) {
		return fmt.Errorf("duty entry %d: %w", i, ErrNotFound)
	}
	if err := document.Validate("duty assignment", a); err != nil {
		return err
	}
	b.doc.Duty[i] = a
	b.dirty = true
	return nil
}

// RemoveDuty deletes the duty entry at index i.
func (b *Board) RemoveDuty(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.doc.Duty) {
		return fmt.Errorf("duty entry %d: %w", i, ErrNotFound)
	}
	b.doc.Duty = append(b.doc.Duty[:i], b.doc.Duty[i+1:]...)
	b.dirty = true
	return nil
}

// ClearDuty empties the duty roster.
func (b *Board) ClearDuty() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.Duty = []document.DutyAssignment{}
	b.dirty = true
}

// SetPrincipal replaces the principal card and stamps its lastUpdate.
func (b *Board) SetPrincipal(p document.PrincipalStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := document.Validate("principal status", p); err != nil {
		return err
	}
	p.LastUpdate = b.clock.Now().UTC().Format(timestampLayout)
	b.doc.Principal = p
	b.dirty = true
	return nil
}

// AddAgenda appends an agenda item.
func (b *Board) AddAgenda(item document.AgendaItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := document.Validate("agenda item", item); err != nil {
		return err
	}
	b.doc.Agenda = append(b.doc.Agenda, item)
	b.dirty = true
	return nil
}

// UpdateAgenda replaces the agenda item at index i.
func (b *Board) UpdateAgenda(i int, item document.AgendaItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.doc.Agenda) {
		return fmt.Errorf("agenda item %d: %w", i, ErrNotFound)
	}
	if err := document.Validate("agenda item", item); err != nil {
		return err
	}
	b.doc.Agenda[i] = item
	b.dirty = true
	return nil
}

// RemoveAgenda deletes the agenda item at index i.
func (b *Board) RemoveAgenda(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.doc.Agenda) {
		return fmt.Errorf("agenda item %d: %w", i, ErrNotFound)
	}
	b.doc.Agenda = append(b.doc.Agenda[:i], b.doc.Agenda[i+1:]...)
	b.dirty = true
	return nil
}

// ClearAgenda empties the agenda.
func (b *Board) ClearAgenda() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.Agenda = []document.AgendaItem{}
	b.dirty = true
}

// SetAnnouncement replaces the banner.
func (b *Board) SetAnnouncement(a document.Announcement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := document.Validate("announcement", a); err != nil {
		return err
	}
	b.doc.Announcement = a
	b.dirty = true
	return nil
}

// SetAnnouncementActive turns the banner on or off.
func (b *Board) SetAnnouncementActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.Announcement.Active = active
	b.dirty = true
}

// SetWhatsApp changes the contact number used for leave requests.
func (b *Board) SetWhatsApp(number string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := document.Settings{WhatsAppNumber: number}
	if err := document.Validate("settings", s); err != nil {
		return err
	}
	b.doc.Settings = s
	b.dirty = true
	return nil
}
