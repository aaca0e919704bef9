package schema

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smaidrm/internal/document"
)

func defaultJSON(t *testing.T) []byte {
	t.Helper()
	raw, err := document.Marshal(document.Default(time.Date(2024, 3, 20, 1, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return raw
}

func TestCheck_DefaultDocument(t *testing.T) {
	assert.NoError(t, Check(defaultJSON(t)))
}

func TestCheck_AllowsUnknownFields(t *testing.T) {
	raw := []byte(`{
		"guruIzin": [],
		"guruPiket": [],
		"kepsek": {"nama": "X", "status": "hadir"},
		"agenda": [],
		"pengumuman": {"aktif": false, "tipe": "info", "pesan": "hi"},
		"kontak": {"telepon": "021"},
		"settings": {"whatsappNumber": "62811", "schoolName": "SMAI"},
		"meta": {"lastUpdate": "2024-03-20T01:00:00Z", "version": "1.0.0"}
	}`)
	assert.NoError(t, Check(raw))
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{
			name: "bad leave status",
			raw: `{"guruIzin":[{"id":1,"nama":"A","mapel":"B","alasan":"C","tanggal":"2024-03-20","waktu":"07:00 - 11:00","status":"done"}],
				"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "guruIzin.0.status",
		},
		{
			name: "roster not a list",
			raw: `{"guruIzin":[],"guruPiket":{"nama":"A"},"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "guruPiket",
		},
		{
			name: "missing meta",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"}}`,
			path: "meta",
		},
		{
			name: "empty banner message",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":""},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "pengumuman.pesan",
		},
		{
			name: "impossible leave date",
			raw: `{"guruIzin":[{"id":1,"nama":"A","mapel":"B","alasan":"C","tanggal":"2024-13-45","waktu":"07:00 - 11:00","status":"pending"}],
				"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "guruIzin.0.tanggal",
		},
		{
			name: "letters in whatsapp number",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"62-abc"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "settings.whatsappNumber",
		},
		{
			name: "blank agenda activity",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[{"waktu":"07:00","kegiatan":""}],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "agenda.0.kegiatan",
		},
		{
			name: "bad banner color",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi","warna":"red"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "pengumuman.warna",
		},
		{
			name: "bad principal state",
			raw: `{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"libur"},"agenda":[],
				"pengumuman":{"aktif":true,"tipe":"info","pesan":"hi"},
				"settings":{"whatsappNumber":"1"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`,
			path: "kepsek.status",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check([]byte(tc.raw))
			require.Error(t, err)

			var serr *Error
			require.True(t, errors.As(err, &serr), "want *Error, got %T: %v", err, err)
			require.NotEmpty(t, serr.Violations)
			assert.Contains(t, serr.Error(), "document does not match schema")

			top := strings.SplitN(tc.path, ".", 2)[0]
			found := false
			for _, v := range serr.Violations {
				if strings.HasPrefix(v.Path, top) {
					found = true
				}
			}
			assert.True(t, found, "no violation under %q: %+v", top, serr.Violations)
		})
	}
}

func TestCheck_MessageLengthCountsCharacters(t *testing.T) {
	doc := func(msg string) []byte {
		return []byte(`{"guruIzin":[],"guruPiket":[],"kepsek":{"nama":"X","status":"hadir"},"agenda":[],
			"pengumuman":{"aktif":true,"tipe":"info","pesan":"` + msg + `","warna":""},
			"settings":{"whatsappNumber":"+62811"},"meta":{"lastUpdate":"x","version":"1.0.0"}}`)
	}
	// 200 two-byte characters is within the limit; 201 is not.
	assert.NoError(t, Check(doc(strings.Repeat("é", 200))))
	assert.Error(t, Check(doc(strings.Repeat("é", 201))))
}

func TestCheck_NotJSON(t *testing.T) {
	err := Check([]byte(`{not json`))
	require.Error(t, err)

	var serr *Error
	assert.False(t, errors.As(err, &serr))
	assert.Contains(t, err.Error(), "parse document")
}

func TestError_Message(t *testing.T) {
	err := &Error{Violations: []Violation{
		{Path: "meta", Message: "field is required"},
		{Path: "kepsek.status", Message: "conflict"},
	}}
	assert.Equal(t, "document does not match schema: meta: field is required (and 1 more)", err.Error())
}
