package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/domain"
)

const userUpdateRetries = 5

// UserStore keeps users as JSON values under user:{id}. Update runs as an
// optimistic WATCH transaction so concurrent score updates on the same
// user cannot race.
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) Get(ctx context.Context, id string) (domain.User, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return decodeUser(raw)
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(user.ID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyRegistered
	}
	// membership index for All
	if err := s.client.SAdd(ctx, usersIndexKey, user.ID).Err(); err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, id string, mutate func(*domain.User) error) (domain.User, error) {
	var updated domain.User
	key := s.key(id)

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		user, err := decodeUser(raw)
		if err != nil {
			return err
		}
		if err := mutate(&user); err != nil {
			return err
		}
		encoded, err := json.Marshal(user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = user
		return nil
	}

	for i := 0; i < userUpdateRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.User{}, err
		}
		return updated, nil
	}
	return domain.User{}, fmt.Errorf("update user %s: too many conflicts", id)
}

func (s *UserStore) All(ctx context.Context) ([]domain.User, error) {
	ids, err := s.client.SMembers(ctx, usersIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

const usersIndexKey = "users:index"

func (s *UserStore) key(id string) string {
	return "user:" + id
}

func decodeUser(raw []byte) (domain.User, error) {
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	if user.ScoresByPool == nil {
		user.ScoresByPool = map[string]domain.Score{}
	}
	return user, nil
}
