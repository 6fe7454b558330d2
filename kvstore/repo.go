package kvstore

import "context"

// Store is a durable string key/value store. It backs the credential fallback tier
// and the persisted filter state.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
