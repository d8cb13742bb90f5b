package history

import (
	"context"
	"errors"
	"log/slog"

	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
)

// DefaultCapacity bounds the submission log when config does not say
// otherwise.
const DefaultCapacity = 10

// Log is the bounded, newest-first record of past submissions. It is a
// convenience cache, not a correctness-critical path: when the quota
// recovery sequence needs room, the whole log is the first eviction
// victim.
type Log struct {
	store types.Store
	cap   int
}

// New creates a log over the shared storage adapter. capacity <= 0
// falls back to DefaultCapacity.
func New(store types.Store, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{store: store, cap: capacity}
}

// Append inserts an entry at the front, evicting the oldest entries
// past capacity. A failed write is logged and swallowed: losing a
// history line never fails a submission.
func (l *Log) Append(ctx context.Context, entry types.HistoryEntry) {
	entries := l.List(ctx)
	entries = append([]types.HistoryEntry{entry}, entries...)
	if len(entries) > l.cap {
		entries = entries[:l.cap]
	}
	if err := l.store.Put(ctx, storage.KeyHistoryLog, entries); err != nil {
		var quotaErr *storage.QuotaExceededError
		if errors.As(err, &quotaErr) {
			slog.Debug("history entry dropped, storage full", "entry", entry.DisplayName)
			return
		}
		slog.Warn("failed to persist history", "error", err)
	}
}

// List returns entries newest first. Missing or corrupt logs read as
// empty.
func (l *Log) List(ctx context.Context) []types.HistoryEntry {
	var entries []types.HistoryEntry
	ok, err := l.store.Get(ctx, storage.KeyHistoryLog, &entries)
	if err != nil {
		slog.Warn("failed to read history", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return entries
}

// Clear removes the whole log.
func (l *Log) Clear(ctx context.Context) error {
	return l.store.Remove(ctx, storage.KeyHistoryLog)
}
