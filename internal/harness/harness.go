package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/smaidrm/internal/access"
	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/backup"
	"github.com/roach88/smaidrm/internal/board"
	"github.com/roach88/smaidrm/internal/console"
	"github.com/roach88/smaidrm/internal/document"
	"github.com/roach88/smaidrm/internal/logging"
	"github.com/roach88/smaidrm/internal/store"
	"github.com/roach88/smaidrm/internal/testutil"
)

// Harness holds one scenario's board and everything wired over it.
type Harness struct {
	ns      store.Namespace
	clock   *testutil.FakeClock
	board   *board.Board
	gate    *access.Gate
	log     *activity.Log
	console *console.Console

	// lastBackup is the file written by the most recent exportBackup.
	lastBackup []byte
}

type operation func(ctx context.Context, h *Harness, args map[string]any) (any, error)

// operations maps step names to console calls. Each returns a value that
// is recorded in the trace.
var operations = map[string]operation{
	"login":           opLogin,
	"logout":          opLogout,
	"requirePage":     opRequirePage,
	"public":          opPublic,
	"hideBanner":      opHideBanner,
	"submitLeave":     opSubmitLeave,
	"addLeave":        opAddLeave,
	"updateLeave":     opUpdateLeave,
	"removeLeave":     opRemoveLeave,
	"setLeaveStatus":  opSetLeaveStatus,
	"addDuty":         opAddDuty,
	"removeDuty":      opRemoveDuty,
	"clearDuty":       opClearDuty,
	"addAgenda":       opAddAgenda,
	"removeAgenda":    opRemoveAgenda,
	"clearAgenda":     opClearAgenda,
	"setPrincipal":    opSetPrincipal,
	"setAnnouncement": opSetAnnouncement,
	"setWhatsApp":     opSetWhatsApp,
	"save":            opSave,
	"stats":           opStats,
	"exportBackup":    opExportBackup,
	"tamperBackup":    opTamperBackup,
	"previewBackup":   opPreviewBackup,
	"restoreBackup":   opRestoreBackup,
	"reset":           opReset,
}

// Run executes a scenario on a fresh in-memory board and returns the
// result. An error means the scenario could not run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	now := scenario.Now
	if now == "" {
		now = DefaultNow
	}
	start, err := time.Parse(time.RFC3339, now)
	if err != nil {
		return nil, fmt.Errorf("parse now: %w", err)
	}

	ctx := context.Background()
	h := newHarness(ctx, start)
	result := NewResult()

	for i, step := range scenario.Setup {
		outcome, value, err := h.execute(ctx, step)
		result.AddTrace(step.Do, step.Args, outcome, value)
		if err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Do, err)
		}
	}

	for i, step := range scenario.Flow {
		outcome, value, _ := h.execute(ctx, step)
		result.AddTrace(step.Do, step.Args, outcome, value)
		checkExpect(result, i, step, outcome, value)
	}

	for _, msg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(msg)
	}

	state, err := toGeneric(h.board.Snapshot())
	if err != nil {
		return nil, err
	}
	result.State, _ = state.(map[string]any)
	return result, nil
}

func newHarness(ctx context.Context, start time.Time) *Harness {
	ns := store.NewMemory()
	clk := testutil.NewFakeClock(start)
	logger := logging.New(logging.ProfileTest, logging.Config{Level: "disabled"})

	log := activity.New(ns, clk)
	b := board.New(ns, board.WithClock(clk), board.WithLogger(logger))
	b.Load(ctx)
	g := access.NewGate(ns, log,
		access.WithClock(clk),
		access.WithLogger(logger),
		access.WithIDs(testutil.NewSequentialIDs("")),
	)

	return &Harness{
		ns:      ns,
		clock:   clk,
		board:   b,
		gate:    g,
		log:     log,
		console: console.New(ns, b, g, log, console.WithClock(clk), console.WithLogger(logger)),
	}
}

// execute runs one step and classifies its outcome.
func (h *Harness) execute(ctx context.Context, step Step) (string, any, error) {
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return OutcomeError, nil, err
		}
		h.clock.Advance(d)
	}

	op, ok := operations[step.Do]
	if !ok {
		return OutcomeError, nil, fmt.Errorf("unknown operation %q", step.Do)
	}
	value, err := op(ctx, h, step.Args)
	if err != nil {
		return Outcome(err), nil, err
	}
	if value == nil {
		return OutcomeOK, nil, nil
	}
	generic, err := toGeneric(value)
	if err != nil {
		return OutcomeError, nil, err
	}
	return OutcomeOK, generic, nil
}

func checkExpect(result *Result, i int, step Step, outcome string, value any) {
	want := OutcomeOK
	if step.Expect != nil {
		want = step.Expect.Outcome
	}
	if outcome != want {
		result.AddError(fmt.Sprintf("flow[%d] %s: expected outcome %s, got %s", i, step.Do, want, outcome))
		return
	}
	if step.Expect == nil || len(step.Expect.Result) == 0 {
		return
	}
	if !matchSubset(value, step.Expect.Result) {
		result.AddError(fmt.Sprintf("flow[%d] %s: result %v does not contain %v", i, step.Do, value, step.Expect.Result))
	}
}

// Outcome classifies err the way scenarios name it.
func Outcome(err error) string {
	var ae *access.Error
	switch {
	case err == nil:
		return OutcomeOK
	case backup.IsIntegrityMismatch(err):
		return OutcomeIntegrity
	case backup.IsMalformed(err):
		return OutcomeMalformed
	case document.IsValidationError(err):
		return OutcomeValidation
	case errors.As(err, &ae):
		return string(ae.Code)
	case errors.Is(err, console.ErrNotConfirmed):
		return OutcomeNotConfirmed
	case errors.Is(err, board.ErrNotFound):
		return OutcomeNotFound
	}
	return OutcomeError
}

// toGeneric round-trips v through JSON so results compare the way they
// are printed. Numbers stay json.Number.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

// bind decodes step args into a typed value through their JSON form.
func bind(args map[string]any, out any) error {
	if args == nil {
		return nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("bad args: %w", err)
	}
	return nil
}

func opLogin(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Role     access.Role `json:"role"`
		Password string      `json:"password"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return h.gate.Login(ctx, a.Role, a.Password)
}

func opLogout(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return nil, h.gate.Logout(ctx)
}

func opRequirePage(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Role access.Role `json:"role"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return h.gate.RequirePage(ctx, a.Role)
}

func opPublic(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return h.console.Public(ctx)
}

func opHideBanner(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Hidden bool `json:"hidden"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.HideBanner(ctx, a.Hidden)
}

func opSubmitLeave(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Name    string `json:"nama"`
		Subject string `json:"mapel"`
		Reason  string `json:"alasan"`
		Date    string `json:"tanggal"`
		Note    string `json:"keterangan"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return h.console.SubmitLeave(ctx, console.LeaveForm{
		Name: a.Name, Subject: a.Subject, Reason: a.Reason, Date: a.Date, Note: a.Note,
	})
}

func opAddLeave(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var lr document.LeaveRequest
	if err := bind(args, &lr); err != nil {
		return nil, err
	}
	return h.console.AddLeave(ctx, lr)
}

func opUpdateLeave(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var lr document.LeaveRequest
	if err := bind(args, &lr); err != nil {
		return nil, err
	}
	return nil, h.console.UpdateLeave(ctx, lr.ID, lr)
}

func opRemoveLeave(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		ID int64 `json:"id"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.RemoveLeave(ctx, a.ID)
}

func opSetLeaveStatus(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		ID     int64                `json:"id"`
		Status document.LeaveStatus `json:"status"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.SetLeaveStatus(ctx, a.ID, a.Status)
}

func opAddDuty(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var d document.DutyAssignment
	if err := bind(args, &d); err != nil {
		return nil, err
	}
	return nil, h.console.AddDuty(ctx, d)
}

type indexArgs struct {
	Index int `json:"index"`
}

func opRemoveDuty(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a indexArgs
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.RemoveDuty(ctx, a.Index)
}

func opClearDuty(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return nil, h.console.ClearDuty(ctx)
}

func opAddAgenda(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var item document.AgendaItem
	if err := bind(args, &item); err != nil {
		return nil, err
	}
	return nil, h.console.AddAgenda(ctx, item)
}

func opRemoveAgenda(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a indexArgs
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.RemoveAgenda(ctx, a.Index)
}

func opClearAgenda(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return nil, h.console.ClearAgenda(ctx)
}

func opSetPrincipal(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	p := h.board.Snapshot().Principal
	if err := bind(args, &p); err != nil {
		return nil, err
	}
	return nil, h.console.SetPrincipal(ctx, p)
}

func opSetAnnouncement(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	a := h.board.Snapshot().Announcement
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.SetAnnouncement(ctx, a)
}

func opSetWhatsApp(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Number string `json:"number"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.SetWhatsApp(ctx, a.Number)
}

func opSave(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return nil, h.console.Save(ctx)
}

func opStats(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return h.console.Stats(ctx)
}

func opExportBackup(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	exp, err := h.console.ExportBackup(ctx)
	if err != nil {
		return nil, err
	}
	h.lastBackup = exp.Encoded
	return map[string]string{
		"fileName":   exp.FileName,
		"exportedBy": exp.Envelope.ExportedBy,
		"checksum":   exp.Envelope.Checksum,
	}, nil
}

// opTamperBackup edits the last exported file in place, the way someone
// would with a text editor.
func opTamperBackup(_ context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Replace string `json:"replace"`
		With    string `json:"with"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	if h.lastBackup == nil {
		return nil, errors.New("tamperBackup: nothing exported yet")
	}
	if !bytes.Contains(h.lastBackup, []byte(a.Replace)) {
		return nil, fmt.Errorf("tamperBackup: %q not found in backup", a.Replace)
	}
	h.lastBackup = []byte(strings.Replace(string(h.lastBackup), a.Replace, a.With, 1))
	return nil, nil
}

func opPreviewBackup(ctx context.Context, h *Harness, _ map[string]any) (any, error) {
	return h.console.PreviewBackup(ctx, h.lastBackup)
}

func opRestoreBackup(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return h.console.RestoreBackup(ctx, h.lastBackup, a.Confirmed)
}

func opReset(ctx context.Context, h *Harness, args map[string]any) (any, error) {
	var a struct {
		Confirmation string `json:"confirmation"`
	}
	if err := bind(args, &a); err != nil {
		return nil, err
	}
	return nil, h.console.Reset(ctx, a.Confirmation)
}
