package app

import (
	"context"
	"strings"
	"time"

	"quizhub-service/internal/domain"
)

// UserStore persists registered users. Update must apply the mutation as
// an atomic read-modify-write on the stored record.
type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
	Update(ctx context.Context, id string, mutate func(*domain.User) error) (domain.User, error)
	All(ctx context.Context) ([]domain.User, error)
}

// PoolStore loads and saves question pools.
type PoolStore interface {
	Get(ctx context.Context, name string) (domain.Pool, error)
	Names(ctx context.Context) ([]string, error)
	Put(ctx context.Context, pool domain.Pool) error
}

// ChatRegistry is the append-only set of known chats. Add must be atomic
// against concurrent first-contact events from the same chat.
type ChatRegistry interface {
	Add(ctx context.Context, chatID string) (bool, error)
	All(ctx context.Context) ([]string, error)
}

// Transport delivers outbound messages to a chat platform.
type Transport interface {
	SendText(ctx context.Context, chatID, text string) error
	SendQuestion(ctx context.Context, chatID string, pool string, q domain.Question) error
}

// Options tune the service; zero values fall back to defaults.
type Options struct {
	SessionTTL           time.Duration
	BroadcastConcurrency int
	SendTimeout          time.Duration
}

const (
	defaultSessionTTL  = 10 * time.Minute
	defaultConcurrency = 4
	defaultSendTimeout = 10 * time.Second
)

// Service contains the quiz-engagement use cases.
type Service struct {
	users     UserStore
	pools     PoolStore
	chats     ChatRegistry
	sessions  SessionStore
	transport Transport

	sessionTTL   time.Duration
	concurrency  int
	sendTimeout  time.Duration
	sessionLocks keyedMutex
}

func NewService(users UserStore, pools PoolStore, chats ChatRegistry, sessions SessionStore, transport Transport, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.BroadcastConcurrency <= 0 {
		opts.BroadcastConcurrency = defaultConcurrency
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	return &Service{
		users:       users,
		pools:       pools,
		chats:       chats,
		sessions:    sessions,
		transport:   transport,
		sessionTTL:  opts.SessionTTL,
		concurrency: opts.BroadcastConcurrency,
		sendTimeout: opts.SendTimeout,
	}
}

// Register creates a user record. Duplicate registrations are rejected.
func (s *Service) Register(ctx context.Context, userID, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	user := domain.User{
		ID:           userID,
		DisplayName:  name,
		ScoresByPool: map[string]domain.Score{},
		Level:        1,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Profile returns the user with derived progress fields freshly
// recomputed and persisted.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.Update(ctx, userID, func(u *domain.User) error {
		u.Refresh()
		return nil
	})
}

// ListPools returns the names of all available pools.
func (s *Service) ListPools(ctx context.Context) ([]string, error) {
	return s.pools.Names(ctx)
}

// UploadPool stores a new pool. Admin-only.
func (s *Service) UploadPool(ctx context.Context, isAdmin bool, pool domain.Pool) error {
	if !isAdmin {
		return domain.ErrUnauthorized
	}
	if pool.Name == "" || len(pool.Questions) == 0 {
		return domain.ErrInvalidInput
	}
	for _, q := range pool.Questions {
		if len(q.Options) == 0 || q.Correct < 0 || q.Correct >= len(q.Options) {
			return domain.ErrInvalidInput
		}
	}
	return s.pools.Put(ctx, pool)
}

// RecordAnswer bumps the user's score for a pool and recomputes the
// derived fields in the same atomic update.
func (s *Service) RecordAnswer(ctx context.Context, userID, poolName string, correct bool) (domain.User, error) {
	return s.users.Update(ctx, userID, func(u *domain.User) error {
		if u.ScoresByPool == nil {
			u.ScoresByPool = map[string]domain.Score{}
		}
		score := u.ScoresByPool[poolName]
		if correct {
			score.Correct++
		} else {
			score.Wrong++
		}
		u.ScoresByPool[poolName] = score
		u.Refresh()
		return nil
	})
}

// TrackChat records a chat in the registry; duplicates are ignored.
// Returns true when the chat was seen for the first time.
func (s *Service) TrackChat(ctx context.Context, chatID string) (bool, error) {
	if chatID == "" {
		return false, domain.ErrInvalidInput
	}
	return s.chats.Add(ctx, chatID)
}
