package tokenstore

import (
	"context"
	"sync"
)

// OverlayStore layers process-scoped writes over a read-only base Store.
// Once written or deleted, the overlay answers every Read until the process
// exits; the base is never modified. Safe for concurrent use.
type OverlayStore struct {
	base Store

	mu     sync.RWMutex
	local  string
	shadow bool // local replaces base, including the deleted state
}

// Compile-time check to ensure OverlayStore implements Store
var _ Store = (*OverlayStore)(nil)

// NewOverlayStore creates an OverlayStore reading through to base until written or deleted.
func NewOverlayStore(base Store) *OverlayStore {
	return &OverlayStore{base: base}
}

// Read returns the overlay value if one was written or deleted, otherwise the base value.
func (o *OverlayStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	o.mu.RLock()
	local, shadow := o.local, o.shadow
	o.mu.RUnlock()

	if !shadow {
		return o.base.Read(ctx)
	}
	if local == "" {
		return "", ErrNotFound
	}
	return local, nil
}

// Write stores value in the overlay.
func (o *OverlayStore) Write(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	o.local, o.shadow = value, true
	o.mu.Unlock()
	return nil
}

// Delete hides the base value for the rest of the process.
func (o *OverlayStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	o.local, o.shadow = "", true
	o.mu.Unlock()
	return nil
}
