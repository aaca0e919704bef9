package document

import "time"

// DefaultWhatsAppNumber receives public leave-request messages until an
// admin changes it.
const DefaultWhatsAppNumber = "6281234567890"

// Default returns the seeded document used on first start and on reset.
// now is stamped into meta.lastUpdate.
func Default(now time.Time) Document {
	return Document{
		Leave: []LeaveRequest{
			{
				ID:        1,
				Name:      "BUDI SANTOSO, S.Pd",
				Subject:   "Matematika",
				Reason:    "Sakit",
				Date:      "2024-03-20",
				TimeRange: "08:00 - 12:00",
				Status:    StatusPending,
			},
			{
				ID:        2,
				Name:      "SITI AMINAH, M.Pd",
				Subject:   "Bahasa Indonesia",
				Reason:    "Dinas",
				Date:      "2024-03-20",
				TimeRange: "09:00 - 15:00",
				Status:    StatusApproved,
			},
		},
		Duty: []DutyAssignment{
			{Name: "Dra. Siti Aminah", Subject: "Matematika"},
			{Name: "Agus Wibowo, S.Pd", Subject: "IPA"},
			{Name: "Rina Dewi, M.Pd", Subject: "Bahasa Inggris"},
		},
		Principal: PrincipalStatus{
			Name:       "Dr. Ahmad Wijaya, M.Pd",
			Status:     PrincipalPresent,
			Note:       "Sedang memimpin rapat koordinasi guru",
			Location:   "Ruang Kepala Sekolah",
			ReturnTime: "15:00 WIB",
			LastUpdate: "2024-03-20 08:00",
		},
		Agenda: []AgendaItem{
			{TimeRange: "08:00 - 09:00", Activity: "Upacara Bendera"},
			{TimeRange: "10:00 - 12:00", Activity: "Rapat Koordinasi Guru"},
			{TimeRange: "13:00 - 15:00", Activity: "Kunjungan Dinas Pendidikan"},
		},
		Announcement: Announcement{
			Active:   true,
			Severity: SeverityInfo,
			Message:  "Selamat datang di Papan Informasi Digital SMAI DRM - Update informasi real-time tersedia",
			Color:    "#FF5252",
		},
		Settings: Settings{WhatsAppNumber: DefaultWhatsAppNumber},
		Meta: Meta{
			LastUpdate: now.UTC().Format(time.RFC3339),
			Version:    Version,
		},
	}
}
