// Package store owns the process-wide mapping from user identifier to their
// booking Conversation. Records are created lazily on first access and
// evicted after a configurable idle TTL, so the map cannot grow without
// bound. Each record carries its own lock: messages from the same user
// serialize, while different users never contend.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"musebot/internal/dialogue"
	"musebot/internal/logging"
)

type entry struct {
	mu       sync.Mutex
	conv     *dialogue.Conversation
	lastSeen atomic.Int64 // Unix nanos; atomic so the janitor can read it lock-free
}

// Store is the conversation store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl   time.Duration // Idle lifetime; <= 0 disables eviction
	sweep time.Duration
	now   func() time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	runMu   sync.Mutex
}

// New creates a Store. ttl is how long an idle conversation survives;
// sweep is how often the janitor checks.
func New(ttl, sweep time.Duration) *Store {
	return NewWithClock(ttl, sweep, time.Now)
}

// NewWithClock creates a Store with an injectable clock for tests.
func NewWithClock(ttl, sweep time.Duration, now func() time.Time) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		sweep:   sweep,
		now:     now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Acquire returns the user's conversation, creating it on first contact, and
// locks it for the caller. The returned release func must be called when the
// caller is done mutating the record. Two concurrent Acquires for the same
// user serialize; Acquires for different users do not.
func (s *Store) Acquire(userID string) (*dialogue.Conversation, func()) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		if e, ok = s.entries[userID]; !ok {
			now := s.now()
			e = &entry{
				conv: &dialogue.Conversation{UserID: userID, CreatedAt: now, UpdatedAt: now},
			}
			e.lastSeen.Store(now.UnixNano())
			s.entries[userID] = e
			logging.Get(logging.CategoryStore).Debugf("created conversation for user %s", userID)
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	e.lastSeen.Store(s.now().UnixNano())
	return e.conv, e.mu.Unlock
}

// Snapshot returns a value copy of the user's conversation, if any.
func (s *Store) Snapshot(userID string) (dialogue.Conversation, bool) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return dialogue.Conversation{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Snapshot(), true
}

// Delete removes a user's conversation outright.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor launches the eviction loop. Non-blocking; stops on Stop or
// when ctx is cancelled. A no-op when the TTL is disabled.
func (s *Store) StartJanitor(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running || s.ttl <= 0 {
		return
	}
	s.running = true

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.sweep)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.evictIdle()
			}
		}
	}()
}

// Stop halts the janitor, if running.
func (s *Store) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	<-s.doneCh
}

// evictIdle drops conversations idle longer than the TTL.
func (s *Store) evictIdle() {
	cutoff := s.now().Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.lastSeen.Load() < cutoff {
			delete(s.entries, id)
			logging.Get(logging.CategoryStore).Debugf("evicted idle conversation for user %s", id)
		}
	}
}
