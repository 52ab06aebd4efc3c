package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// SessionStore keeps per-user navigation state and revoked token ids.
type SessionStore interface {
	Get(ctx context.Context, login string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, login string) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func newSession(login string) *domain.Session {
	return &domain.Session{Login: login, Page: domain.PageDashboard}
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	revoked  map[string]time.Time
	now      func() time.Time
}

// NewMemorySessionStore returns a process-local session store.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]domain.Session),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *memorySessionStore) Get(_ context.Context, login string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.ToLower(login)]
	if !ok {
		return newSession(login), nil
	}
	return &sess, nil
}

func (s *memorySessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = s.now()
	s.sessions[strings.ToLower(session.Login)] = *session
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.ToLower(login))
	return nil
}

func (s *memorySessionStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *memorySessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && s.now().Before(exp), nil
}

const (
	sessionKeyPrefix = "opcopilot:session:"
	revokedKeyPrefix = "opcopilot:revoked:"
)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore stores sessions as JSON values expiring after ttl.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) Get(ctx context.Context, login string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+strings.ToLower(login)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession(login), nil
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return newSession(login), nil
	}
	return &sess, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+strings.ToLower(session.Login), raw, s.ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, login string) error {
	return s.client.Del(ctx, sessionKeyPrefix+strings.ToLower(login)).Err()
}

func (s *redisSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
