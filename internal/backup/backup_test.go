package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smaidrm/internal/checksum"
	"github.com/roach88/smaidrm/internal/document"
)

var fixedNow = time.Date(2024, 3, 20, 1, 0, 0, 0, time.UTC)

func encodedDefault(t *testing.T) []byte {
	t.Helper()
	env, err := Export(document.Default(fixedNow), "admin", fixedNow)
	require.NoError(t, err)
	raw, err := Encode(env)
	require.NoError(t, err)
	return raw
}

// sealed builds an envelope around arbitrary data with a correct checksum.
func sealed(t *testing.T, data string) []byte {
	t.Helper()
	canonical, err := document.CanonicalJSON([]byte(data))
	require.NoError(t, err)
	raw, err := Encode(Envelope{
		Data:       json.RawMessage(data),
		Exported:   "2024-03-20T01:00:00Z",
		ExportedBy: "admin",
		Checksum:   checksum.String(canonical),
	})
	require.NoError(t, err)
	return raw
}

func TestEncode_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "default_envelope", encodedDefault(t))
}

func TestExport_ChecksumIsOverCanonicalData(t *testing.T) {
	env, err := Export(document.Default(fixedNow), "kepsek", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "7a52d954", env.Checksum)
	assert.Equal(t, "kepsek", env.ExportedBy)
	assert.Equal(t, "2024-03-20T01:00:00Z", env.Exported)
}

func TestRestore_RoundTrip(t *testing.T) {
	want := document.Default(fixedNow)
	want.Leave = append(want.Leave, document.LeaveRequest{
		ID: 1710896400000, Name: "RINA <MARLINA> & CO", Subject: "Kimia", Reason: "Keperluan Keluarga",
		Date: "2024-03-21", TimeRange: "07:00 - 11:00", Status: document.StatusRejected,
	})
	want.Duty = nil
	want.Normalize()

	env, err := Export(want, "admin", fixedNow)
	require.NoError(t, err)
	raw, err := Encode(env)
	require.NoError(t, err)

	got, err := Restore(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRestore_RoundTripKeepsDecomposedText(t *testing.T) {
	want := document.Default(fixedNow)
	want.Principal.Name = "Rene\u0301 Wijaya"
	want.Agenda[0].Activity = "Upacara Be\u0301ndera"

	env, err := Export(want, "admin", fixedNow)
	require.NoError(t, err)
	raw, err := Encode(env)
	require.NoError(t, err)

	got, err := Restore(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "Rene\u0301 Wijaya", got.Principal.Name)
}

func TestExport_ComposedAndDecomposedTextHashDifferently(t *testing.T) {
	decomposed := document.Default(fixedNow)
	decomposed.Principal.Name = "Rene\u0301"
	composed := document.Default(fixedNow)
	composed.Principal.Name = "Ren\u00e9"

	a, err := Export(decomposed, "admin", fixedNow)
	require.NoError(t, err)
	b, err := Export(composed, "admin", fixedNow)
	require.NoError(t, err)
	assert.NotEqual(t, a.Checksum, b.Checksum)
}

func TestPreview_Summary(t *testing.T) {
	s, err := Preview(encodedDefault(t))
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Exported:   "2024-03-20T01:00:00Z",
		ExportedBy: "admin",
		Version:    "1.0.0",
		LastUpdate: "2024-03-20T01:00:00Z",
		Leave:      2,
		Duty:       3,
		Agenda:     3,
		Checksum:   "7a52d954",
	}, s)
}

func TestPreview_ReformattedFileStillVerifies(t *testing.T) {
	var generic map[string]any
	require.NoError(t, json.Unmarshal(encodedDefault(t), &generic))
	compact, err := json.Marshal(generic)
	require.NoError(t, err)

	_, err = Preview(compact)
	assert.NoError(t, err)
}

func TestPreview_AlteredChecksum(t *testing.T) {
	raw := bytes.Replace(encodedDefault(t), []byte(`"checksum": "7a52d954"`), []byte(`"checksum": "7a52d955"`), 1)

	_, err := Preview(raw)
	require.Error(t, err)
	assert.True(t, IsIntegrityMismatch(err))

	var ie *IntegrityMismatchError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "7a52d955", ie.Expected)
	assert.Equal(t, "7a52d954", ie.Actual)
}

func TestRestore_EveryByteFlipInDataIsCaught(t *testing.T) {
	raw := encodedDefault(t)
	start := bytes.Index(raw, []byte(`"data": `)) + len(`"data": `)
	end := bytes.Index(raw, []byte(",\n  \"exported\""))
	require.Greater(t, end, start)

	for i := start; i < end; i++ {
		mutated := bytes.Clone(raw)
		mutated[i] ^= 0x01

		_, err := Restore(mutated)
		require.Error(t, err, "flip at %d went unnoticed", i)
		if json.Valid(mutated) {
			assert.True(t, IsIntegrityMismatch(err), "flip at %d: %v", i, err)
		} else {
			assert.True(t, IsMalformed(err), "flip at %d: %v", i, err)
		}
	}
}

func TestPreview_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"data": `},
		{"missing data", `{"exported": "x", "checksum": "0"}`},
		{"null data", `{"data": null, "checksum": "0"}`},
		{"missing checksum", `{"data": {}, "exported": "x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Preview([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, IsMalformed(err), "got %v", err)
		})
	}
}

func TestPreview_SchemaViolationIsMalformed(t *testing.T) {
	raw := sealed(t, `{"guruIzin": [], "guruPiket": [], "agenda": [],
		"kepsek": {"nama": "X", "status": "libur"},
		"pengumuman": {"aktif": true, "tipe": "info", "pesan": "hi"},
		"settings": {"whatsappNumber": "1"},
		"meta": {"lastUpdate": "2024-03-20T01:00:00Z", "version": "1.0.0"}}`)

	_, err := Preview(raw)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.False(t, IsIntegrityMismatch(err))
}

func TestPreview_InvalidDocumentIsMalformed(t *testing.T) {
	raw := sealed(t, `{"guruIzin": [], "guruPiket": [{"nama": "", "mapel": "IPA"}], "agenda": [],
		"kepsek": {"nama": "X", "status": "hadir"},
		"pengumuman": {"aktif": true, "tipe": "info", "pesan": "hi"},
		"settings": {"whatsappNumber": "1"},
		"meta": {"lastUpdate": "2024-03-20T01:00:00Z", "version": "1.0.0"}}`)

	_, err := Preview(raw)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Contains(t, err.Error(), "guruPiket.0.nama")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "smaidrm-backup-2024-03-20.json", FileName(fixedNow))
}

func TestResetToDefault(t *testing.T) {
	assert.Equal(t, document.Default(fixedNow), ResetToDefault(fixedNow))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(fixedNow))
	require.NoError(t, os.WriteFile(path, encodedDefault(t), 0o644))

	res := <-ReadFile(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 2, res.Summary.Leave)
	assert.Equal(t, document.Default(fixedNow), res.Document)
}

func TestReadFile_Missing(t *testing.T) {
	res := <-ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestReadFile_CancelledDiscardsResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.json")
	require.NoError(t, os.WriteFile(path, encodedDefault(t), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := ReadFile(ctx, path)
	res := <-ch
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, document.Document{}, res.Document)

	_, open := <-ch
	assert.False(t, open)
}
