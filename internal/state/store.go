package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/user/docsight/internal/storage"
	"github.com/user/docsight/internal/types"
)

// Patch is an incremental session update. Nil fields are left
// untouched; a non-nil Diagram adds or overwrites one diagram slot.
type Patch struct {
	Interpretation  *string
	Recommendations []string
	Diagram         *DiagramUpdate
	LastTouchedAt   *time.Time
}

// DiagramUpdate sets the payload for a single diagram type.
type DiagramUpdate struct {
	Type    types.DiagramType
	Payload types.DiagramPayload
}

// Listener observes session changes. The session passed in is a copy;
// listeners may hold it without racing the store.
type Listener func(*types.Session)

// Store holds exactly one active session and is the single source of
// truth for the UI. Every Replace/Patch synchronously notifies
// listeners and then mirrors the session into persistent storage;
// a failed persistence write is logged but never rolls back memory.
type Store struct {
	persist types.Store

	mu        sync.Mutex
	session   *types.Session
	listeners map[int]Listener
	nextID    int
}

// New creates an empty store that mirrors milestones through persist.
// persist may be nil in tests that only need the in-memory behavior.
func New(persist types.Store) *Store {
	return &Store{
		persist:   persist,
		listeners: make(map[int]Listener),
	}
}

// Load populates the store from the persisted session record, if one
// exists. Corrupt or missing records leave the store empty.
func (s *Store) Load(ctx context.Context) bool {
	if s.persist == nil {
		return false
	}
	var record types.StoredSessionRecord
	ok, err := s.persist.Get(ctx, storage.KeySessionCore, &record)
	if err != nil {
		slog.Warn("failed to load persisted session", "error", err)
		return false
	}
	if !ok || record.Session == nil || record.Version != types.StoredSessionVersion {
		return false
	}

	s.mu.Lock()
	s.session = record.Session
	s.mu.Unlock()
	return true
}

// Current returns a copy of the active session, or nil when absent.
func (s *Store) Current() *types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// CurrentID returns the active session's ID, or "" when absent.
func (s *Store) CurrentID() types.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.ID
}

// Replace installs a new session wholesale, superseding any previous
// one.
func (s *Store) Replace(ctx context.Context, session *types.Session) {
	s.mu.Lock()
	s.session = session.Clone()
	snapshot := s.session.Clone()
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	s.fanOut(ctx, snapshot, fns)
}

// Patch applies an incremental update to the active session, preserving
// every field the patch does not mention. Patching an empty store is a
// no-op.
func (s *Store) Patch(ctx context.Context, p Patch) {
	s.PatchSession(ctx, "", p)
}

// PatchSession applies a patch only if the active session matches id.
// An empty id skips the identity check. This is the second line of
// defense against in-flight responses that outlive their session.
func (s *Store) PatchSession(ctx context.Context, id types.SessionID, p Patch) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	if id != "" && s.session.ID != id {
		s.mu.Unlock()
		slog.Debug("discarded patch for superseded session", "session_id", string(id))
		return
	}

	if p.Interpretation != nil {
		s.session.Interpretation = *p.Interpretation
	}
	if p.Recommendations != nil {
		s.session.Recommendations = append([]string(nil), p.Recommendations...)
	}
	if p.Diagram != nil {
		if s.session.Diagrams == nil {
			s.session.Diagrams = make(map[types.DiagramType]types.DiagramPayload)
		}
		s.session.Diagrams[p.Diagram.Type] = p.Diagram.Payload
	}
	if p.LastTouchedAt != nil {
		s.session.LastTouchedAt = *p.LastTouchedAt
	} else {
		s.session.LastTouchedAt = time.Now()
	}

	snapshot := s.session.Clone()
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	s.fanOut(ctx, snapshot, fns)
}

// Clear drops the active session from memory and storage.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Remove(ctx, storage.KeySessionCore); err != nil {
			slog.Warn("failed to clear persisted session", "error", err)
		}
	}
}

// OnChange registers a listener and returns a function that removes it.
func (s *Store) OnChange(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// listenerSnapshot returns listeners in registration order. Callers
// hold s.mu.
func (s *Store) listenerSnapshot() []Listener {
	fns := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// fanOut notifies listeners then writes the record through, both
// synchronously. Memory stays authoritative when the write fails.
func (s *Store) fanOut(ctx context.Context, snapshot *types.Session, fns []Listener) {
	for _, fn := range fns {
		fn(snapshot)
	}

	if s.persist == nil {
		return
	}
	record := types.StoredSessionRecord{
		Version: types.StoredSessionVersion,
		Session: snapshot,
	}
	if err := s.persist.Put(ctx, storage.KeySessionCore, record); err != nil {
		slog.Warn("session not durably saved", "session_id", string(snapshot.ID), "error", err)
	}
}
