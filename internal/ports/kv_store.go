package ports

import "context"

// KVStore is the persistence adapter the cart store writes snapshots to.
// Values are opaque strings; the store never interprets them.
type KVStore interface {
	// Get returns the value stored under key.
	// ok is false and err is nil when the key does not exist.
	// Returns an error only for actual read failures.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	// Implementations must overwrite atomically: a concurrent or crashed
	// reader observes either the old value or the new one, never a mix
	// and never an absent key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// PathLocator is implemented by stores that keep each key in a local file.
// File watchers use it to find the file backing the snapshot key.
type PathLocator interface {
	// Path returns the file that holds key.
	Path(key string) string
}
