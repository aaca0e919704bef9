package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/smaidrm/internal/activity"
	"github.com/roach88/smaidrm/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Log      []string // Activity log, oldest first, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Log) > 0 {
		fmt.Fprintf(&buf, "\nActivity log:\n")
		for i, action := range e.Log {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, action)
		}
	}

	return buf.String()
}

// actions returns the activity texts oldest first.
func actions(entries []activity.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e.Action
	}
	return out
}

func assertLogContains(log []string, assertion Assertion) error {
	for _, action := range log {
		if action == assertion.Action {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("entry %q", assertion.Action),
		Actual:   "not found in activity log",
		Log:      log,
	}
}

// assertLogOrder checks that the actions appear in the given order.
// Other entries may sit between them.
func assertLogOrder(log []string, assertion Assertion) error {
	next := 0
	for _, action := range log {
		if next < len(assertion.Actions) && action == assertion.Actions[next] {
			next++
		}
	}
	if next == len(assertion.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogOrder,
		Expected: fmt.Sprintf("entries in order: %q", assertion.Actions),
		Actual:   fmt.Sprintf("missing or out of order: %q", assertion.Actions[next]),
		Log:      log,
	}
}

// assertLogCount checks the number of entries with the given text. An
// empty action counts every entry.
func assertLogCount(log []string, assertion Assertion) error {
	count := 0
	for _, action := range log {
		if assertion.Action == "" || action == assertion.Action {
			count++
		}
	}
	if count == assertion.Count {
		return nil
	}
	what := "entries"
	if assertion.Action != "" {
		what = fmt.Sprintf("entries %q", assertion.Action)
	}
	return &AssertionError{
		Type:     AssertLogCount,
		Expected: fmt.Sprintf("%d %s", assertion.Count, what),
		Actual:   fmt.Sprintf("%d", count),
		Log:      log,
	}
}

func assertFinalState(ctx context.Context, h *Harness, assertion Assertion) error {
	var doc any
	var err error
	if assertion.Source == "stored" {
		doc, err = storedDocument(ctx, h.ns)
	} else {
		doc, err = toGeneric(h.board.Snapshot())
	}
	if err != nil {
		return err
	}

	actual, ok := lookup(doc, assertion.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("a value at %s", assertion.Path),
			Actual:   "path not found",
		}
	}

	if assertion.Length != nil {
		list, isList := actual.([]any)
		if !isList || len(list) != *assertion.Length {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s to have %d elements", assertion.Path, *assertion.Length),
				Actual:   fmt.Sprintf("%v", actual),
			}
		}
	}
	if assertion.Equals != nil && !valuesEqual(actual, assertion.Equals) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", assertion.Path, assertion.Equals),
			Actual:   fmt.Sprintf("%v", actual),
		}
	}
	return nil
}

func storedDocument(ctx context.Context, ns store.Namespace) (any, error) {
	raw, err := ns.Get(ctx, store.KeyDocument)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	doc, err := toGeneric(json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("stored document: %w", err)
	}
	return doc, nil
}

// lookup walks a dotted path. Numeric segments index lists.
func lookup(v any, path string) (any, bool) {
	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

func assertUnsaved(h *Harness, assertion Assertion) error {
	want, _ := assertion.Equals.(bool)
	if got := h.board.Dirty(); got != want {
		return &AssertionError{
			Type:     AssertUnsaved,
			Expected: fmt.Sprintf("unsaved = %t", want),
			Actual:   fmt.Sprintf("unsaved = %t", got),
		}
	}
	return nil
}

// matchSubset checks if actual contains all expected keys with equal
// values. Extra keys in actual are ignored.
func matchSubset(actual any, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}

	actualMap, ok := actual.(map[string]any)
	if !ok {
		return false
	}

	for key, expectedVal := range expected {
		actualVal, exists := actualMap[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares a generic JSON value with a YAML-decoded one.
// Numbers compare by their decimal text; nested maps match as subsets.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	switch exp := expected.(type) {
	case map[string]any:
		return matchSubset(actual, exp)
	case []any:
		list, ok := actual.([]any)
		if !ok || len(list) != len(exp) {
			return false
		}
		for i := range exp {
			if !valuesEqual(list[i], exp[i]) {
				return false
			}
		}
		return true
	case string:
		s, ok := actual.(string)
		return ok && s == exp
	case bool:
		b, ok := actual.(bool)
		return ok && b == exp
	case int, int64, uint64, float64:
		n, ok := actual.(json.Number)
		return ok && n.String() == fmt.Sprint(exp)
	}
	return false
}

// EvaluateAssertions evaluates all assertions against the harness state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var failures []string

	entries, err := h.log.All(ctx)
	if err != nil {
		return []string{fmt.Sprintf("read activity log: %v", err)}
	}
	log := actions(entries)

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLogContains:
			err = assertLogContains(log, assertion)
		case AssertLogOrder:
			err = assertLogOrder(log, assertion)
		case AssertLogCount:
			err = assertLogCount(log, assertion)
		case AssertFinalState:
			err = assertFinalState(ctx, h, assertion)
		case AssertUnsaved:
			err = assertUnsaved(h, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	return failures
}
