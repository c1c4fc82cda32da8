package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session maps an opaque token to the signed-in admin.
type Session struct {
	Token     string    `json:"token"`
	AdminID   int       `json:"admin_id"`
	AdminName string    `json:"admin_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions server-side.
type SessionStore interface {
	Create(ctx context.Context, adminID int, adminName string) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

func newToken() string {
	return uuid.NewString()
}

// sessionSweepInterval bounds how often Create scans for expired sessions
const sessionSweepInterval = time.Minute

// MemorySessionStore keeps sessions in process memory. Expired sessions are
// dropped on lookup and swept periodically on Create.
type MemorySessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	sessions  map[string]Session
	lastSweep time.Time
}

// NewMemorySessionStore creates an in-process session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, sessions: make(map[string]Session)}
}

func (s *MemorySessionStore) Create(ctx context.Context, adminID int, adminName string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > sessionSweepInterval {
		for token, session := range s.sessions {
			if session.Expired(now) {
				delete(s.sessions, token)
			}
		}
		s.lastSweep = now
	}

	session := Session{Token: newToken(), AdminID: adminID, AdminName: adminName, ExpiresAt: now.Add(s.ttl)}
	s.sessions[session.Token] = session
	return &session, nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// SessionKeyPrefix namespaces session keys in Redis.
const SessionKeyPrefix = "netclass:session:"

// RedisSessionStore keeps sessions in Redis with a key TTL so that
// several console instances share sign-ins.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) key(token string) string {
	return SessionKeyPrefix + token
}

func (s *RedisSessionStore) Create(ctx context.Context, adminID int, adminName string) (*Session, error) {
	session := Session{Token: newToken(), AdminID: adminID, AdminName: adminName, ExpiresAt: time.Now().Add(s.ttl)}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.Token), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	val, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
