package store

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps any backend fault. Callers treat it as fatal for
// the current operation and surface a service-unavailable outcome; no partial
// state is assumed valid.
var ErrStoreUnavailable = errors.New("record store unavailable")

// RecordStore is the opaque get/set/list/delete primitive everything above
// builds on: a flat namespace of string keys mapping to JSON values. Each Set
// replaces a single key atomically; there are no transactions across keys.
type RecordStore interface {
	// Get decodes the value at key into out. Returns (false, nil) when the
	// key does not exist.
	Get(ctx context.Context, key string, out any) (bool, error)
	// Set marshals value and writes it at key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// ListKeys returns all keys with the given prefix, in lexical order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
