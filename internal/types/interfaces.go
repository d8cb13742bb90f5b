package types

import "context"

// Store is the bounded key/value persistence contract. Put is atomic
// from the caller's perspective and runs quota recovery before failing.
// Get reports absent for missing or corrupt values; corrupt values are
// removed, never surfaced as fatal errors.
type Store interface {
	Put(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Remove(ctx context.Context, key string) error
}
