package handlers

import (
	"sync"
	"time"
)

const (
	menuMain  = "main"
	menuType  = "type"
	menuStyle = "style"
)

// panel is the chat-side view of a session: which message carries the
// control panel and what the next text message means.
type panel struct {
	MessageID      int
	Menu           string
	AwaitingPrompt bool
	UpdatedAt      time.Time
}

type panelKey struct {
	ChatID int64
	UserID int64
}

type panelStore struct {
	mu sync.Mutex
	m  map[panelKey]*panel
}

func newPanelStore() *panelStore {
	return &panelStore{m: make(map[panelKey]*panel)}
}

func (s *panelStore) Get(chatID, userID int64) panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(chatID, userID)
}

func (s *panelStore) Update(chatID, userID int64, fn func(*panel)) panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(p)
	}
	if p.Menu == "" {
		p.Menu = menuMain
	}
	p.UpdatedAt = time.Now()
	return *p
}

// Reset forgets the panel message so the next render sends a fresh one.
func (s *panelStore) Reset(chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[panelKey{ChatID: chatID, UserID: userID}] = &panel{Menu: menuMain, UpdatedAt: time.Now()}
}

// Sweep drops panels idle longer than ttl.
func (s *panelStore) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, p := range s.m {
		if now.Sub(p.UpdatedAt) > ttl {
			delete(s.m, k)
			removed++
		}
	}
	return removed
}

func (s *panelStore) getOrCreateLocked(chatID, userID int64) *panel {
	key := panelKey{ChatID: chatID, UserID: userID}
	if p, ok := s.m[key]; ok {
		return p
	}
	p := &panel{Menu: menuMain, UpdatedAt: time.Now()}
	s.m[key] = p
	return p
}
