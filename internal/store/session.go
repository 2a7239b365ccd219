package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle chat session is kept.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore persists chat sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, s *models.ChatSession) error
	Get(ctx context.Context, id string) (*models.ChatSession, error)
}

// MemorySessionStore keeps sessions in process memory and drops them after ttl of inactivity.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.ChatSession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]*models.ChatSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.NewNotFoundError("session", id)
	}
	if s.now().Sub(session.UpdatedAt) >= s.ttl {
		delete(s.sessions, id)
		return nil, models.NewNotFoundError("session", id)
	}
	return session.Clone(), nil
}

// RedisSessionStore keeps sessions as JSON values that expire after ttl of inactivity.
type RedisSessionStore struct {
	client *redisclient.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(client *redisclient.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, prefix: "leadbot:session:", ttl: ttl}
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.NewNotFoundError("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var session models.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
