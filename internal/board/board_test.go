package board

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/store"
	"github.com/roach88/smaidrm/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 20, 1, 0, 0, 0, time.UTC)

func newBoard(t *testing.T, ns store.Namespace) (*Board, *testutil.FakeClock) {
	t.Helper()
	clk := testutil.NewFakeClock(fixedNow)
	return New(ns, WithClock(clk)), clk
}

func validLeave() document.LeaveRequest {
	return document.LeaveRequest{
		Name:      "RINA MARLINA",
		Subject:   "Kimia",
		Reason:    "Sakit",
		Date:      "2024-03-20",
		TimeRange: "07:00 - 11:00",
	}
}

func TestLoad_EmptyNamespaceWritesDefault(t *testing.T) {
	ctx := context.Background()
	ns := store.NewMemory()
	b, _ := newBoard(t, ns)

	res := b.Load(ctx)
	assert.Equal(t, SourceDefault, res.Source)
	assert.NoError(t, res.Warning)
	assert.False(t, b.Dirty())

	raw, err := ns.Get(ctx, store.KeyDocument)
	require.NoError(t, err)
	stored, err := document.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, document.Default(fixedNow), stored)
}

func TestLoad_StoredDocument(t *testing.T) {
	ctx := context.Background()
	ns := store.NewMemory()

	doc := document.Default(fixedNow)
	doc.Duty = doc.Duty[:1]
	raw, err := document.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, ns.Put(ctx, store.KeyDocument, raw))

	b, _ := newBoard(t, ns)
	res := b.Load(ctx)
	assert.Equal(t, SourceStored, res.Source)
	assert.Equal(t, doc, b.Snapshot())
}

func TestLoad_CorruptFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"guruIzin": [`},
		{"schema violation", `{"guruIzin": "none"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			ns := store.NewMemory()
			require.NoError(t, ns.Put(ctx, store.KeyDocument, []byte(tc.raw)))

			b, _ := newBoard(t, ns)
			res := b.Load(ctx)
			assert.Equal(t, SourceRecovered, res.Source)
			assert.NoError(t, res.Warning)
			assert.Equal(t, document.Default(fixedNow), b.Snapshot())

			// the corrupt value is left alone until the next save
			raw, err := ns.Get(ctx, store.KeyDocument)
			require.NoError(t, err)
			assert.Equal(t, tc.raw, string(raw))
		})
	}
}

func TestLoad_RuleBreakingDocumentFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *document.Document)
	}{
		{"empty banner message", func(d *document.Document) { d.Announcement.Message = "" }},
		{"banner message too long", func(d *document.Document) { d.Announcement.Message = strings.Repeat("x", 201) }},
		{"impossible leave date", func(d *document.Document) { d.Leave[0].Date = "2024-13-45" }},
		{"letters in whatsapp number", func(d *document.Document) { d.Settings.WhatsAppNumber = "62-abc" }},
		{"blank duty name", func(d *document.Document) { d.Duty[0].Name = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			ns := store.NewMemory()
			doc := document.Default(fixedNow)
			tc.mutate(&doc)
			raw, err := document.Marshal(doc)
			require.NoError(t, err)
			require.NoError(t, ns.Put(ctx, store.KeyDocument, raw))

			b, _ := newBoard(t, ns)
			res := b.Load(ctx)
			assert.Equal(t, SourceRecovered, res.Source)
			assert.Equal(t, document.Default(fixedNow), b.Snapshot())

			// whatever loads can be saved again
			require.NoError(t, b.Save(ctx))
		})
	}
}

func TestDecode_AppliesFieldRules(t *testing.T) {
	doc := document.Default(fixedNow)
	doc.Leave[0].Date = "2024-02-30"
	raw, err := document.Marshal(doc)
	require.NoError(t, err)

	_, err = decode(raw)
	require.Error(t, err)
}

func TestLoad_UnavailableFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	ns := testutil.NewFlakyNamespace(store.NewMemory())
	ns.FailReads(true)

	b, _ := newBoard(t, ns)
	res := b.Load(ctx)
	assert.Equal(t, SourceMemory, res.Source)
	require.Error(t, res.Warning)
	assert.True(t, store.IsUnavailable(res.Warning))

	// the board keeps working on its in-memory namespace
	require.NoError(t, b.AddDuty(document.DutyAssignment{Name: "A", Subject: "B"}))
	assert.NoError(t, b.Save(ctx))
}

func TestSave_StampsLastUpdateAndClearsDirty(t *testing.T) {
	ctx := context.Background()
	ns := store.NewMemory()
	b, clk := newBoard(t, ns)
	b.Load(ctx)

	require.NoError(t, b.AddAgenda(document.AgendaItem{TimeRange: "13:00 - 14:00", Activity: "Rapat"}))
	assert.True(t, b.Dirty())

	later := clk.Advance(2 * time.Hour)
	require.NoError(t, b.Save(ctx))
	assert.False(t, b.Dirty())

	snap := b.Snapshot()
	assert.Equal(t, later.Format(time.RFC3339), snap.Meta.LastUpdate)

	raw, err := ns.Get(ctx, store.KeyDocument)
	require.NoError(t, err)
	stored, err := document.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, snap, stored)
	assert.Len(t, stored.Agenda, 4)
}

func TestSave_ValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	ns := store.NewMemory()
	b, clk := newBoard(t, ns)
	b.Load(ctx)

	before, err := ns.Get(ctx, store.KeyDocument)
	require.NoError(t, err)

	b.mu.Lock()
	b.doc.Settings.WhatsAppNumber = "not-a-number"
	b.dirty = true
	b.mu.Unlock()

	clk.Advance(time.Hour)
	err = b.Save(ctx)
	require.Error(t, err)
	assert.True(t, document.IsValidationError(err))
	assert.True(t, b.Dirty())
	assert.Equal(t, document.Default(fixedNow).Meta, b.Snapshot().Meta)

	after, err := ns.Get(ctx, store.KeyDocument)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSave_StorageFailureKeepsDirty(t *testing.T) {
	ctx := context.Background()
	ns := testutil.NewFlakyNamespace(store.NewMemory())
	b, _ := newBoard(t, ns)
	b.Load(ctx)

	b.SetAnnouncementActive(false)
	ns.FailWrites(true)

	err := b.Save(ctx)
	require.Error(t, err)
	assert.True(t, store.IsUnavailable(err))
	assert.True(t, b.Dirty())
}

func TestSave_CompactsBlankRows(t *testing.T) {
	ctx := context.Background()
	b, _ := newBoard(t, store.NewMemory())
	b.Load(ctx)

	b.mu.Lock()
	b.doc.Duty = append(b.doc.Duty, document.DutyAssignment{Name: "  ", Subject: "Fisika"})
	b.doc.Agenda = append(b.doc.Agenda, document.AgendaItem{TimeRange: "", Activity: ""})
	b.mu.Unlock()

	require.NoError(t, b.Save(ctx))
	snap := b.Snapshot()
	assert.Len(t, snap.Duty, 3)
	assert.Len(t, snap.Agenda, 3)
}

func TestReplace_KeepsMeta(t *testing.T) {
	ctx := context.Background()
	ns := store.NewMemory()
	b, clk := newBoard(t, ns)
	b.Load(ctx)

	doc := document.Default(fixedNow.Add(-24 * time.Hour))
	doc.Duty = nil
	clk.Advance(time.Hour)
	b.SetAnnouncementActive(false)

	require.NoError(t, b.Replace(ctx, doc))
	assert.False(t, b.Dirty())

	snap := b.Snapshot()
	assert.Equal(t, doc.Meta, snap.Meta)
	assert.NotNil(t, snap.Duty)
	assert.Empty(t, snap.Duty)
}

func TestBoard_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	b, _ := newBoard(t, s)
	b.Load(ctx)
	_, err = b.AddLeave(validLeave())
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx))
	want := b.Snapshot()
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	b2, _ := newBoard(t, s)
	res := b2.Load(ctx)
	assert.Equal(t, SourceStored, res.Source)
	assert.Equal(t, want, b2.Snapshot())
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	b, _ := newBoard(t, store.NewMemory())
	snap := b.Snapshot()
	snap.Duty[0].Name = "CHANGED"
	assert.NotEqual(t, "CHANGED", b.Snapshot().Duty[0].Name)
}

func TestCounts(t *testing.T) {
	b, clk := newBoard(t, store.NewMemory())

	c := b.Counts()
	assert.Equal(t, document.Counts{Leave: 2, LeaveToday: 2, Pending: 1, Duty: 3, Agenda: 3}, c)

	clk.Advance(24 * time.Hour)
	assert.Equal(t, 0, b.Counts().LeaveToday)
	assert.Empty(t, b.LeaveOn(b.Today()))
	assert.Len(t, b.LeaveOn("2024-03-20"), 2)
	assert.Equal(t, 1, b.PendingCount())
}

func TestErrNotFoundWrapping(t *testing.T) {
	b, _ := newBoard(t, store.NewMemory())
	err := b.RemoveLeave(999)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "leave request 999")
}
