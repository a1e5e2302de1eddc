package state

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrNoSession      = errors.New("no session in context")
	ErrUnknownDomain  = errors.New("unknown domain")
)

// DomainScope is the conversational state one specialist works against.
type DomainScope struct {
	Domain  Domain
	History *History
	Memory  *EntityMemory
}

// Session is the per-conversation context: the supervisor history plus one
// scope per domain. Callers hold the session lock for a whole message.
type Session struct {
	mu sync.Mutex

	ID         string
	Supervisor *History
	Lodging    *DomainScope
	Deals      *DomainScope

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(id string, historyLimit int, now time.Time) *Session {
	return &Session{
		ID:         id,
		Supervisor: NewHistory(historyLimit),
		Lodging: &DomainScope{
			Domain:  DomainLodging,
			History: NewHistory(historyLimit),
			Memory:  NewLodgingMemory(),
		},
		Deals: &DomainScope{
			Domain:  DomainDeals,
			History: NewHistory(historyLimit),
			Memory:  NewDealsMemory(),
		},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) Scope(d Domain) (*DomainScope, error) {
	switch d {
	case DomainLodging:
		return s.Lodging, nil
	case DomainDeals:
		return s.Deals, nil
	default:
		return nil, ErrUnknownDomain
	}
}

// Scopes lists the domain scopes in a fixed order.
func (s *Session) Scopes() []*DomainScope {
	return []*DomainScope{s.Lodging, s.Deals}
}

// Reset clears every history buffer, both entity memories and both
// last-shown pointers. The caller must hold the session lock.
func (s *Session) Reset() {
	s.Supervisor.Clear()
	for _, scope := range s.Scopes() {
		scope.History.Clear()
		scope.Memory.Clear()
	}
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
