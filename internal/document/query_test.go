package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaveOn(id int64, date string, status LeaveStatus) LeaveRequest {
	return LeaveRequest{ID: id, Name: "GURU", Subject: "IPA", Reason: "Sakit", Date: date, TimeRange: "08:00 - 12:00", Status: status}
}

func TestLeaveOn(t *testing.T) {
	doc := Document{Leave: []LeaveRequest{
		leaveOn(1, "2024-03-20", StatusPending),
		leaveOn(2, "2024-03-21", StatusApproved),
		leaveOn(3, "2024-03-20", StatusRejected),
		leaveOn(4, "2024-03-20 ", StatusPending),
	}}

	got := doc.LeaveOn("2024-03-20")
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	none := doc.LeaveOn("2025-01-01")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLeaveOnEmptyDocument(t *testing.T) {
	var doc Document
	assert.Empty(t, doc.LeaveOn("2024-03-20"))
	assert.Equal(t, 0, doc.PendingCount())
}

func TestCounts(t *testing.T) {
	doc := Default(fixedNow)
	c := doc.Counts("2024-03-20")
	assert.Equal(t, Counts{Leave: 2, LeaveToday: 2, Pending: 1, Duty: 3, Agenda: 3}, c)

	c = doc.Counts("2024-03-21")
	assert.Equal(t, 0, c.LeaveToday)
}

func TestCloneIsDeep(t *testing.T) {
	doc := Default(fixedNow)
	cp := doc.Clone()
	cp.Leave[0].Name = "CHANGED"
	cp.Duty = append(cp.Duty, DutyAssignment{Name: "X", Subject: "Y"})

	assert.Equal(t, "BUDI SANTOSO, S.Pd", doc.Leave[0].Name)
	assert.Len(t, doc.Duty, 3)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{"guruIzin":null,"kontak":{"kepsek":"0812"},"kepsek":{"nama":"A","status":"rapat"},"meta":{"version":"1.0.0"}}`)
	doc, err := Decode(raw)
	require.NoError(t, err)
	assert.NotNil(t, doc.Leave)
	assert.NotNil(t, doc.Duty)
	assert.Equal(t, PrincipalMeeting, doc.Principal.Status)
	assert.Equal(t, "SEDANG RAPAT", doc.Principal.Status.Label())
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "#2196F3", SeverityInfo.Color())
	assert.Equal(t, "#4CAF50", SeveritySuccess.Color())
	assert.Equal(t, "#FF5252", Severity("other").Color())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Menunggu", StatusPending.Label())
	assert.Equal(t, "Disetujui", StatusApproved.Label())
	assert.Equal(t, "Ditolak", StatusRejected.Label())

	assert.Equal(t, "SEDANG RAPAT", PrincipalMeeting.Label())
	assert.Equal(t, "HADIR", PrincipalState("unknown").Label())

	assert.Equal(t, "#4CAF50", SeveritySuccess.Color())
	assert.Equal(t, "#FF5252", Severity("").Color())
}

func TestPrincipalDetail(t *testing.T) {
	assert.Equal(t, "Sedang bertugas", PrincipalStatus{}.Detail())
	assert.Equal(t, "Rapat | Lokasi: Aula | Kembali: 10:00",
		PrincipalStatus{Note: "Rapat", Location: "Aula", ReturnTime: "10:00"}.Detail())
	assert.Equal(t, "Sedang bertugas | Kembali: 13:00", PrincipalStatus{ReturnTime: "13:00"}.Detail())
}
