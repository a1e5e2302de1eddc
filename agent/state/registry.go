package state

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 30 * time.Minute
)

type RegistryConfig struct {
	MaxSessions  int
	TTL          time.Duration
	HistoryLimit int
}

// Registry owns one Session per session key. Idle sessions expire after TTL
// and the least recently used ones are evicted beyond MaxSessions.
type Registry struct {
	mu           sync.Mutex
	sessions     *expirable.LRU[string, *Session]
	historyLimit int
	now          func() time.Time
}

func NewRegistry(cfg RegistryConfig) *Registry {
	size := cfg.MaxSessions
	if size <= 0 {
		size = DefaultMaxSessions
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &Registry{
		sessions:     expirable.NewLRU[string, *Session](size, nil, ttl),
		historyLimit: limit,
		now:          time.Now,
	}
}

// Acquire returns the session for id, creating it on first contact. Access
// refreshes the idle timer.
func (r *Registry) Acquire(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s, ok := r.sessions.Get(id)
	if !ok {
		s = NewSession(id, r.historyLimit, now)
	}
	r.sessions.Add(id, s)
	return s, nil
}

// Peek returns an existing session without creating or refreshing it.
func (r *Registry) Peek(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Peek(strings.TrimSpace(id))
}

// Reset clears a known session in place. Unknown ids are a no-op.
func (r *Registry) Reset(id string) bool {
	s, ok := r.Peek(id)
	if !ok {
		return false
	}
	s.Lock()
	defer s.Unlock()
	s.Reset()
	return true
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Remove(strings.TrimSpace(id))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Len()
}
