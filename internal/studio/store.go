package studio

import (
	"context"
	"sync"
	"time"
)

const DefaultSessionTTL = 2 * time.Hour

type sessionKey struct {
	ChatID int64
	UserID int64
}

type storeEntry struct {
	session      *Session
	lastActivity time.Time
}

// Store keeps one Session per (chat, user) pair.
type Store struct {
	studio *Studio
	ttl    time.Duration
	now    func() time.Time

	mu sync.Mutex
	m  map[sessionKey]*storeEntry
}

func NewStore(studio *Studio, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		studio: studio,
		ttl:    ttl,
		now:    studio.now,
		m:      make(map[sessionKey]*storeEntry),
	}
}

// Get returns the session for the pair, creating it on first use, and marks
// it active.
func (s *Store) Get(chatID, userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{ChatID: chatID, UserID: userID}
	e, ok := s.m[key]
	if !ok {
		e = &storeEntry{session: s.studio.NewSession()}
		s.m[key] = e
	}
	e.lastActivity = s.now()
	return e.session
}

// Reset starts the pair's session over.
func (s *Store) Reset(chatID, userID int64) *Session {
	sess := s.Get(chatID, userID)
	sess.StartOver()
	return sess
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep drops sessions idle for longer than the TTL. Sessions with a
// request in flight are kept.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for key, e := range s.m {
		if e.lastActivity.After(cutoff) || e.session.Busy() {
			continue
		}
		delete(s.m, key)
		removed++
	}
	if removed > 0 {
		s.studio.logger.Info("swept idle sessions", "removed", removed, "remaining", len(s.m))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
