package document

import (
	"encoding/json"
	"fmt"
)

// Version is the data version stamped into new documents.
const Version = "1.0.0"

// MaxAnnouncementLength is the longest banner message accepted on save.
const MaxAnnouncementLength = 200

// LeaveStatus is the approval state of a leave request.
type LeaveStatus string

const (
	StatusPending  LeaveStatus = "pending"
	StatusApproved LeaveStatus = "approved"
	StatusRejected LeaveStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s LeaveStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Label returns the status badge text.
func (s LeaveStatus) Label() string {
	switch s {
	case StatusApproved:
		return "Disetujui"
	case StatusRejected:
		return "Ditolak"
	default:
		return "Menunggu"
	}
}

// PrincipalState is where the principal currently is.
type PrincipalState string

const (
	PrincipalPresent     PrincipalState = "hadir"
	PrincipalMeeting     PrincipalState = "rapat"
	PrincipalOfficialOut PrincipalState = "dinas"
	PrincipalOnLeave     PrincipalState = "cuti"
	PrincipalSick        PrincipalState = "sakit"
)

// Label returns the banner text shown on the public board.
func (s PrincipalState) Label() string {
	switch s {
	case PrincipalMeeting:
		return "SEDANG RAPAT"
	case PrincipalOfficialOut:
		return "DINAS LUAR"
	case PrincipalOnLeave:
		return "CUTI"
	case PrincipalSick:
		return "SAKIT"
	default:
		return "HADIR"
	}
}

// Severity controls the announcement banner color.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Color returns the banner background for the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityInfo:
		return "#2196F3"
	case SeverityWarning:
		return "#FF9800"
	case SeverityDanger:
		return "#F44336"
	case SeveritySuccess:
		return "#4CAF50"
	default:
		return "#FF5252"
	}
}

// LeaveRequest is one teacher absence entry (guru izin).
type LeaveRequest struct {
	ID        int64       `json:"id"`
	Name      string      `json:"nama" validate:"required"`
	Subject   string      `json:"mapel" validate:"required"`
	Reason    string      `json:"alasan" validate:"required"`
	Date      string      `json:"tanggal" validate:"required,datetime=2006-01-02"`
	TimeRange string      `json:"waktu" validate:"required"`
	Status    LeaveStatus `json:"status" validate:"oneof=pending approved rejected"`
}

// DutyAssignment is one teacher on today's duty roster (guru piket).
type DutyAssignment struct {
	Name    string `json:"nama" validate:"required"`
	Subject string `json:"mapel" validate:"required"`
}

// PrincipalStatus is the principal's presence card (kepsek).
type PrincipalStatus struct {
	Name       string         `json:"nama" validate:"required"`
	Status     PrincipalState `json:"status" validate:"oneof=hadir rapat dinas cuti sakit"`
	Note       string         `json:"keterangan"`
	Location   string         `json:"lokasi"`
	ReturnTime string         `json:"waktuKembali"`
	LastUpdate string         `json:"lastUpdate,omitempty"`
}

// Detail is the one-line description under the principal's name.
func (p PrincipalStatus) Detail() string {
	detail := p.Note
	if detail == "" {
		detail = "Sedang bertugas"
	}
	if p.Location != "" {
		detail += " | Lokasi: " + p.Location
	}
	if p.ReturnTime != "" {
		detail += " | Kembali: " + p.ReturnTime
	}
	return detail
}

// AgendaItem is one entry of the day's agenda, kept in display order.
type AgendaItem struct {
	TimeRange string `json:"waktu" validate:"required"`
	Activity  string `json:"kegiatan" validate:"required"`
}

// Announcement is the banner (pengumuman).
type Announcement struct {
	Active   bool     `json:"aktif"`
	Severity Severity `json:"tipe" validate:"oneof=info warning danger success"`
	Message  string   `json:"pesan" validate:"required,max=200"`
	Color    string   `json:"warna,omitempty" validate:"omitempty,hexcolor"`
}

// Settings holds board-wide configuration stored with the data.
type Settings struct {
	WhatsAppNumber string `json:"whatsappNumber" validate:"required,numeric"`
}

// Meta tracks when the document was last saved and its data version.
type Meta struct {
	LastUpdate string `json:"lastUpdate"`
	Version    string `json:"version" validate:"required"`
}

// Document is the whole board state.
type Document struct {
	Leave        []LeaveRequest   `json:"guruIzin" validate:"dive"`
	Duty         []DutyAssignment `json:"guruPiket" validate:"dive"`
	Principal    PrincipalStatus  `json:"kepsek"`
	Agenda       []AgendaItem     `json:"agenda" validate:"dive"`
	Announcement Announcement     `json:"pengumuman"`
	Settings     Settings         `json:"settings"`
	Meta         Meta             `json:"meta"`
}

// Normalize replaces nil collections with empty ones so the document
// never serializes a null roster.
func (d *Document) Normalize() {
	if d.Leave == nil {
		d.Leave = []LeaveRequest{}
	}
	if d.Duty == nil {
		d.Duty = []DutyAssignment{}
	}
	if d.Agenda == nil {
		d.Agenda = []AgendaItem{}
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := d
	out.Leave = append([]LeaveRequest{}, d.Leave...)
	out.Duty = append([]DutyAssignment{}, d.Duty...)
	out.Agenda = append([]AgendaItem{}, d.Agenda...)
	return out
}

// IndexOfLeave returns the position of the leave request with id, or -1.
func (d *Document) IndexOfLeave(id int64) int {
	for i, lr := range d.Leave {
		if lr.ID == id {
			return i
		}
	}
	return -1
}

// Marshal encodes the document as ordinary JSON.
func Marshal(d Document) ([]byte, error) {
	d.Normalize()
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Decode parses stored or imported JSON into a Document. Unknown fields
// are ignored; missing collections decode as empty.
func Decode(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	d.Normalize()
	return d, nil
}
