package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/smaidrm/internal/store"
)

// ErrInjected is the cause carried by failures from FlakyNamespace.
var ErrInjected = errors.New("injected storage failure")

// FlakyNamespace wraps a namespace and fails reads or writes on demand,
// for exercising StorageUnavailable recovery paths.
type FlakyNamespace struct {
	mu         sync.Mutex
	inner      store.Namespace
	failReads  bool
	failWrites bool
}

// NewFlakyNamespace wraps inner; it starts healthy.
func NewFlakyNamespace(inner store.Namespace) *FlakyNamespace {
	return &FlakyNamespace{inner: inner}
}

// FailReads toggles read failures.
func (f *FlakyNamespace) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = on
}

// FailWrites toggles write (Put and Delete) failures.
func (f *FlakyNamespace) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = on
}

func (f *FlakyNamespace) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, &store.UnavailableError{Op: "get", Key: key, Err: ErrInjected}
	}
	return f.inner.Get(ctx, key)
}

func (f *FlakyNamespace) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return &store.UnavailableError{Op: "put", Key: key, Err: ErrInjected}
	}
	return f.inner.Put(ctx, key, value)
}

func (f *FlakyNamespace) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return &store.UnavailableError{Op: "delete", Key: key, Err: ErrInjected}
	}
	return f.inner.Delete(ctx, key)
}
