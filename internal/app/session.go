package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quizhub-service/internal/domain"
)

// SessionState names the single live state of the pool-selection machine.
// Idle is the absence of a session; Delivered and Cancelled are terminal,
// so the session record is discarded on reaching them.
type SessionState string

const StateAwaitingPool SessionState = "awaiting_pool"

// Session is the transient per-(chat,user) quiz state. Never persisted.
type Session struct {
	ChatID    string
	UserID    string
	State     SessionState
	CreatedAt time.Time
}

// SessionStore keeps pending sessions keyed by (chat, user).
type SessionStore interface {
	Put(session *Session)
	Get(chatID, userID string) (*Session, bool)
	Delete(chatID, userID string)
}

// keyedMutex serializes state transitions per (chat, user) so the machine
// stays deterministic under concurrent inbound events.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func sessionKey(chatID, userID string) string {
	return chatID + "/" + userID
}

// StartQuiz opens a pool-selection session and returns the pool names to
// present. With no pools available it terminates immediately without
// creating a session. A pending session for the same (chat, user) is
// replaced.
func (s *Service) StartQuiz(ctx context.Context, chatID, userID string) ([]string, error) {
	unlock := s.sessionLocks.lock(sessionKey(chatID, userID))
	defer unlock()

	names, err := s.pools.Names(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, domain.ErrNoPools
	}

	s.sessions.Put(&Session{
		ChatID:    chatID,
		UserID:    userID,
		State:     StateAwaitingPool,
		CreatedAt: time.Now(),
	})
	return names, nil
}

// SubmitQuizInput feeds a textual reply into the pending session. A pool
// name selects one question uniformly at random and delivers it through
// the transport, ending the session; unknown names keep the session open
// and return ErrPoolNotFound so the caller can reissue the notice.
func (s *Service) SubmitQuizInput(ctx context.Context, chatID, userID, text string) error {
	unlock := s.sessionLocks.lock(sessionKey(chatID, userID))
	defer unlock()

	if _, ok := s.liveSession(chatID, userID); !ok {
		return domain.ErrSessionNotFound
	}

	pool, err := s.pools.Get(ctx, text)
	if err != nil {
		// Unknown pool: session stays open, unlimited retries.
		return err
	}

	question := pool.Questions[rand.Intn(len(pool.Questions))]

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	sendErr := s.transport.SendQuestion(sendCtx, chatID, pool.Name, question)

	// Terminal either way: Delivered on success, failed quiz on error.
	s.sessions.Delete(chatID, userID)

	if sendErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, sendErr)
	}
	return nil
}

// CancelQuiz discards the pending session, if any.
func (s *Service) CancelQuiz(ctx context.Context, chatID, userID string) error {
	unlock := s.sessionLocks.lock(sessionKey(chatID, userID))
	defer unlock()

	if _, ok := s.liveSession(chatID, userID); !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions.Delete(chatID, userID)
	return nil
}

// liveSession fetches the session and reaps it when past the TTL.
func (s *Service) liveSession(chatID, userID string) (*Session, bool) {
	session, ok := s.sessions.Get(chatID, userID)
	if !ok {
		return nil, false
	}
	if time.Since(session.CreatedAt) > s.sessionTTL {
		s.sessions.Delete(chatID, userID)
		return nil, false
	}
	return session, true
}
