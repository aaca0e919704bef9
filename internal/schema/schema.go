// Package schema checks raw document JSON against a CUE schema before it
// is trusted.
//
// Decoding into document.Document silently zero-fills missing fields and
// drops wrongly typed ones. The schema check runs first, at the storage
// and backup boundary, so a hand-edited file with a misspelled status or a
// roster that is not a list is rejected with a path instead of being
// half-loaded.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed document.cue
var documentCUE string

// Violation is one schema failure.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error lists every violation found in a document.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return "document does not match schema"
	}
	v := e.Violations[0]
	msg := v.Message
	if v.Path != "" {
		msg = v.Path + ": " + msg
	}
	if n := len(e.Violations) - 1; n > 0 {
		return fmt.Sprintf("document does not match schema: %s (and %d more)", msg, n)
	}
	return "document does not match schema: " + msg
}

// Checker validates documents. A cue.Context is not safe for concurrent
// use, so Check serializes callers.
type Checker struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// New compiles the embedded schema.
func New() (*Checker, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(documentCUE, cue.Filename("document.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Document"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile document schema: #Document not defined")
	}
	return &Checker{ctx: ctx, def: def}, nil
}

// Check validates raw JSON. It returns *Error for schema violations and a
// plain error when raw is not JSON at all.
func (c *Checker) Check(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.ctx.CompileBytes(raw, cue.Filename("document.json"))
	if err := v.Err(); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	unified := c.def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toError(err)
	}
	return nil
}

func toError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Violations: []Violation{{Message: err.Error()}}}
	}
	out := &Error{}
	for _, e := range errs {
		format, args := e.Msg()
		out.Violations = append(out.Violations, Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return out
}

var defaultChecker = sync.OnceValues(New)

// Check validates raw JSON with a shared Checker.
func Check(raw []byte) error {
	c, err := defaultChecker()
	if err != nil {
		return err
	}
	return c.Check(raw)
}
