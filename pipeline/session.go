package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"videodub/types"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists pipeline session state between stage requests.
type SessionStore interface {
	Save(ctx context.Context, session *types.PipelineSession) error
	Load(ctx context.Context, id string) (*types.PipelineSession, error)
}

// RedisStore keeps sessions in Redis with a TTL, so abandoned sessions
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string { return "session:" + id }

// Save writes the session as JSON, refreshing its TTL.
func (s *RedisStore) Save(ctx context.Context, session *types.PipelineSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, s.ttl).Err()
}

// Load reads a session by id.
func (s *RedisStore) Load(ctx context.Context, id string) (*types.PipelineSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session types.PipelineSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// MemoryStore keeps sessions in process memory. Used when Redis is not
// configured; state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]types.PipelineSession
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]types.PipelineSession)}
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, session *types.PipelineSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// Load returns a copy of the stored session.
func (s *MemoryStore) Load(_ context.Context, id string) (*types.PipelineSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}
