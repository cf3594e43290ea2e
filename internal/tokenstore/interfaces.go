package tokenstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Read when no value is stored.
	ErrNotFound = errors.New("tokenstore: value not found")

	// ErrReadOnly is returned by Write and Delete on backends that cannot be modified.
	ErrReadOnly = errors.New("tokenstore: storage is read-only")
)

// Store reads, writes and deletes a single value in persistent storage.
type Store interface {
	// Read returns the stored value. Returns an error wrapping ErrNotFound if
	// nothing is stored or the stored value is empty.
	Read(ctx context.Context) (string, error)

	// Write persists the value, replacing any previous one. Returns ErrReadOnly
	// if the storage backend is read-only (e.g., environment variables).
	Write(ctx context.Context, value string) error

	// Delete removes the stored value. Deleting an absent value is not an error.
	Delete(ctx context.Context) error
}
