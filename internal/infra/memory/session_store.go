package memory

import (
	"sync"

	"quizhub-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*app.Session)}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[s.key(session.ChatID, session.UserID)] = session
}

func (s *SessionStore) Get(chatID, userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[s.key(chatID, userID)]
	return session, ok
}

func (s *SessionStore) Delete(chatID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, s.key(chatID, userID))
}

func (s *SessionStore) key(chatID, userID string) string {
	return chatID + "/" + userID
}
