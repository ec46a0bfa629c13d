package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("store: key not found")

// SessionStore is durable keyed storage for in-progress session state.
// Production uses Redis; tests use the in-memory implementation, so
// session logic never touches a real storage backend in unit tests.
//
// Keys have no TTL: saved state must remain recoverable across reloads
// indefinitely until explicitly deleted.
type SessionStore interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any prior value.
	Set(ctx context.Context, key, value string) error

	// SetNX stores value only if key is absent. Returns true when the
	// write happened. Used as the once-only finalize guard.
	SetNX(ctx context.Context, key, value string) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Append pushes value onto the tail of the list under key.
	Append(ctx context.Context, key, value string) error

	// List returns all values of the list under key, oldest first.
	// A missing list yields an empty slice, not an error.
	List(ctx context.Context, key string) ([]string, error)

	// IndexAdd inserts member into the sorted index under key with the
	// given score, replacing the member's prior score if present.
	IndexAdd(ctx context.Context, key, member string, score float64) error

	// IndexExpired returns all members of the index whose score is <= max.
	IndexExpired(ctx context.Context, key string, max float64) ([]string, error)

	// IndexRemove removes member from the index. Missing members are not
	// an error.
	IndexRemove(ctx context.Context, key, member string) error
}
