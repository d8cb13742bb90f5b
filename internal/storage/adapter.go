package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Adapter is the bounded key/value store the rest of the client talks
// to. Values are stored as JSON. A logical byte quota is enforced
// across all keys; when a write would exceed it, low-value keys are
// evicted in a fixed priority order and the write is retried once
// before QuotaExceededError is returned.
type Adapter struct {
	backend Backend
	quota   int64

	mu    sync.Mutex
	sizes map[string]int64
}

// New wraps a backend with quota accounting. quotaBytes <= 0 disables
// the quota. Existing keys are scanned so usage survives restarts.
func New(backend Backend, quotaBytes int64) (*Adapter, error) {
	a := &Adapter{
		backend: backend,
		quota:   quotaBytes,
		sizes:   make(map[string]int64),
	}

	keys, err := backend.Keys()
	if err != nil {
		return nil, fmt.Errorf("scan storage keys: %w", err)
	}
	for _, key := range keys {
		data, err := backend.Read(key)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("size storage key %s: %w", key, err)
		}
		a.sizes[key] = int64(len(data))
	}
	return a, nil
}

// Put stores value under key. The write is atomic: either the full
// value lands or the previous value is kept and an error is returned.
func (a *Adapter) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureRoom(key, int64(len(data))); err != nil {
		return err
	}

	if err := a.backend.Write(key, data); err != nil {
		// The backend hit a limit the logical quota did not predict.
		// Run the same recovery sequence and retry exactly once.
		a.evictLowValue(key)
		if err2 := a.backend.Write(key, data); err2 != nil {
			return fmt.Errorf("write %s: %w", key, err2)
		}
	}
	a.sizes[key] = int64(len(data))
	return nil
}

// Get unmarshals the value under key into dest. Missing keys report
// absent. Corrupt values are removed and report absent; they are never
// surfaced as errors.
func (a *Adapter) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := a.backend.Read(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("removing corrupt stored value", "key", key, "error", err)
		if rmErr := a.Remove(ctx, key); rmErr != nil {
			slog.Warn("failed to remove corrupt value", "key", key, "error", rmErr)
		}
		return false, nil
	}
	return true, nil
}

// Remove deletes the value under key. Removing a missing key is not an
// error.
func (a *Adapter) Remove(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.backend.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	delete(a.sizes, key)
	return nil
}

// Usage returns the tracked logical usage in bytes.
func (a *Adapter) Usage() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usageExcluding("")
}

// Close releases the underlying backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

// usageExcluding sums tracked sizes, skipping the key about to be
// overwritten. Callers hold a.mu.
func (a *Adapter) usageExcluding(key string) int64 {
	var total int64
	for k, n := range a.sizes {
		if k == key {
			continue
		}
		total += n
	}
	return total
}

// ensureRoom evicts low-value keys until n bytes fit under the quota,
// or returns QuotaExceededError. Callers hold a.mu.
func (a *Adapter) ensureRoom(key string, n int64) error {
	if a.quota <= 0 {
		return nil
	}
	if a.usageExcluding(key)+n <= a.quota {
		return nil
	}

	for _, victim := range evictionOrder {
		if victim == key {
			continue
		}
		if _, ok := a.sizes[victim]; !ok {
			continue
		}
		a.evictKey(victim)
		if a.usageExcluding(key)+n <= a.quota {
			return nil
		}
	}
	return &QuotaExceededError{Key: key, Need: n, Quota: a.quota}
}

// evictLowValue deletes every evictable key. Used for the single retry
// after a backend-level write failure. Callers hold a.mu.
func (a *Adapter) evictLowValue(key string) {
	for _, victim := range evictionOrder {
		if victim == key {
			continue
		}
		if _, ok := a.sizes[victim]; !ok {
			continue
		}
		a.evictKey(victim)
	}
}

func (a *Adapter) evictKey(key string) {
	if err := a.backend.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		slog.Warn("failed to evict key", "key", key, "error", err)
		return
	}
	slog.Info("evicted low-value key for quota recovery", "key", key, "freed_bytes", a.sizes[key])
	delete(a.sizes, key)
}
