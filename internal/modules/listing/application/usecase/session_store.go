package usecase

import (
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"bookshelfWs/internal/shared/session"
)

// Session is one authenticated UI session and the screens it has open.
type Session struct {
	State *session.State

	mu      sync.Mutex
	screens map[string]Screen
}

func newSession(state *session.State) *Session {
	return &Session{
		State:   state,
		screens: make(map[string]Screen),
	}
}

func (s *Session) ID() string { return s.State.ID() }

// Screen returns an already opened screen.
func (s *Session) Screen(name string) (Screen, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	screen, ok := s.screens[name]
	return screen, ok
}

// Screens lists the names of the opened screens.
func (s *Session) Screens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.screens))
	for name := range s.screens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// adopt stores screen unless another goroutine opened the same name first; the stored one wins.
func (s *Session) adopt(name string, screen Screen) Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.screens[name]; ok {
		return existing
	}
	s.screens[name] = screen
	return screen
}

// sessionStore keeps the most recently used sessions; the least recently used are evicted.
type sessionStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

func newSessionStore(size int) (*sessionStore, error) {
	if size <= 0 {
		size = defaultMaxSessions
	}
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, err
	}
	return &sessionStore{cache: cache}, nil
}

// upsert returns the stored session for id, calling create when there is none.
func (s *sessionStore) upsert(id string, create func() *Session, renew func(*Session)) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache.Get(id); ok {
		renew(existing)
		return existing
	}
	created := create()
	s.cache.Add(id, created)
	return created
}

func (s *sessionStore) get(id string) (*Session, bool) {
	return s.cache.Get(id)
}

func (s *sessionStore) remove(id string) bool {
	return s.cache.Remove(id)
}

func (s *sessionStore) len() int {
	return s.cache.Len()
}

// all returns the stored sessions without touching their recency.
func (s *sessionStore) all() []*Session {
	return s.cache.Values()
}
