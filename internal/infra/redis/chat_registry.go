package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const chatsKey = "chats:registry"

// ChatRegistry stores the known-chat set in a Redis SET. SADD gives the
// atomic append-if-absent the registry invariant requires.
type ChatRegistry struct {
	client *redis.Client
}

func NewChatRegistry(client *redis.Client) *ChatRegistry {
	return &ChatRegistry{client: client}
}

// Seed adds a pre-populated chat list; existing members are untouched.
func (r *ChatRegistry) Seed(ctx context.Context, chats ...string) error {
	if len(chats) == 0 {
		return nil
	}
	members := make([]interface{}, len(chats))
	for i, chatID := range chats {
		members[i] = chatID
	}
	return r.client.SAdd(ctx, chatsKey, members...).Err()
}

func (r *ChatRegistry) Add(ctx context.Context, chatID string) (bool, error) {
	added, err := r.client.SAdd(ctx, chatsKey, chatID).Result()
	if err != nil {
		return false, fmt.Errorf("track chat: %w", err)
	}
	return added == 1, nil
}

func (r *ChatRegistry) All(ctx context.Context) ([]string, error) {
	chats, err := r.client.SMembers(ctx, chatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}
