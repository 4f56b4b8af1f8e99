package memory

import (
	"context"
	"sync"
)

// ChatRegistry is an in-memory, insertion-ordered set of chat ids.
type ChatRegistry struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewChatRegistry pre-populates the registry with an optional seed set.
func NewChatRegistry(seed ...string) *ChatRegistry {
	r := &ChatRegistry{seen: make(map[string]struct{})}
	for _, chatID := range seed {
		if _, ok := r.seen[chatID]; ok {
			continue
		}
		r.seen[chatID] = struct{}{}
		r.order = append(r.order, chatID)
	}
	return r
}

func (r *ChatRegistry) Add(_ context.Context, chatID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[chatID]; ok {
		return false, nil
	}
	r.seen[chatID] = struct{}{}
	r.order = append(r.order, chatID)
	return true, nil
}

func (r *ChatRegistry) All(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chats := make([]string, len(r.order))
	copy(chats, r.order)
	return chats, nil
}
