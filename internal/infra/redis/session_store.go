package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - Sessions stay in a local in-memory map; they are transient and the
//     service owns them exclusively in a single active process.
//   - Redis holds a liveness marker with the session TTL so idle sessions
//     disappear even if the process never touches them again.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	key := s.key(session.ChatID, session.UserID)
	s.mu.Lock()
	s.sessions[key] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), key, "1", s.ttl).Err()
}

func (s *SessionStore) Get(chatID, userID string) (*app.Session, bool) {
	key := s.key(chatID, userID)
	s.mu.RLock()
	session, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	alive, err := s.client.Exists(context.Background(), key).Result()
	if err == nil && alive == 0 {
		// marker expired: reap the local copy
		s.mu.Lock()
		delete(s.sessions, key)
		s.mu.Unlock()
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(chatID, userID string) {
	key := s.key(chatID, userID)
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), key).Err()
}

func (s *SessionStore) key(chatID, userID string) string {
	return "quiz:session:" + chatID + ":" + userID
}
