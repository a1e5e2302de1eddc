package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStoreKeyPrefix  = "concierge:transcript:"
	defaultStoreTTL        = 24 * time.Hour
	DefaultTranscriptLimit = 5
)

// Exchange is one user message and the reply shown for it. The transcript is
// display-only and never fed back to the agents.
type Exchange struct {
	User string    `json:"user"`
	Bot  string    `json:"bot"`
	At   time.Time `json:"at"`
}

// TranscriptStore keeps the bounded per-browser-session display log.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, ex Exchange) error
	List(ctx context.Context, sessionID string) ([]Exchange, error)
	Clear(ctx context.Context, sessionID string) error
}

/* ---------------------------- in-memory store ---------------------------- */

type MemoryTranscriptStore struct {
	mu    sync.Mutex
	limit int
	logs  map[string][]Exchange
}

func NewMemoryTranscriptStore(limit int) *MemoryTranscriptStore {
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	return &MemoryTranscriptStore{
		limit: limit,
		logs:  make(map[string][]Exchange),
	}
}

func (m *MemoryTranscriptStore) Append(_ context.Context, sessionID string, ex Exchange) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	log := append(m.logs[sessionID], ex)
	if len(log) > m.limit {
		log = append([]Exchange(nil), log[len(log)-m.limit:]...)
	}
	m.logs[sessionID] = log
	return nil
}

func (m *MemoryTranscriptStore) List(_ context.Context, sessionID string) ([]Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Exchange(nil), m.logs[sessionID]...), nil
}

func (m *MemoryTranscriptStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, sessionID)
	return nil
}

/* ------------------------------ redis store ------------------------------ */

// StoreOption customizes RedisTranscriptStore.
type StoreOption func(*RedisTranscriptStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisTranscriptStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *RedisTranscriptStore) {
		s.ttl = ttl
	}
}

func WithLimit(limit int) StoreOption {
	return func(s *RedisTranscriptStore) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// RedisTranscriptStore keeps each transcript as a capped Redis list.
type RedisTranscriptStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	limit     int
}

func NewRedisTranscriptStore(client redis.UniversalClient, opts ...StoreOption) (*RedisTranscriptStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	store := &RedisTranscriptStore{
		client:    client,
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
		limit:     DefaultTranscriptLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, fmt.Errorf("ttl must be >= 0")
	}
	return store, nil
}

// NewRedisTranscriptStoreFromURL parses a redis:// URL and builds the store.
func NewRedisTranscriptStoreFromURL(rawURL string, opts ...StoreOption) (*RedisTranscriptStore, error) {
	redisOpts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisTranscriptStore(redis.NewClient(redisOpts), opts...)
}

func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, ex Exchange) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string) ([]Exchange, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	out := make([]Exchange, 0, len(raw))
	for _, item := range raw {
		var ex Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			return nil, fmt.Errorf("decode exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, nil
}

func (s *RedisTranscriptStore) Clear(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, key).Err()
}

func (s *RedisTranscriptStore) redisKey(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + strings.TrimSpace(sessionID), nil
}
