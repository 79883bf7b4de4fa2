// Package kv abstracts the ephemeral key-value store used for single-use
// tokens. The contract is deliberately small: string values, TTLs, an atomic
// counter, and an atomic get-and-delete used to consume single-use entries.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and GetDel for an absent key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the ephemeral token store contract.
//
// A zero ttl on Set means the key never expires; ephemeral tokens must always
// be written with a ttl. Infrastructure failures propagate as ordinary errors
// so callers fail loudly rather than silently succeeding without a token.
type Store interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically reads and removes key, returning ErrNotFound when it
	// was absent. Of two concurrent GetDel calls on the same key, exactly one
	// observes the value.
	GetDel(ctx context.Context, key string) (string, error)

	// Set upserts key with the given ttl (0 = no expiry).
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Incr atomically increments the named counter and returns the new value.
	Incr(ctx context.Context, counter string) (int64, error)
}
