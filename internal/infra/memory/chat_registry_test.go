package memory

import (
	"context"
	"sync"
	"testing"
)

func TestChatRegistryAppendIfAbsent(t *testing.T) {
	ctx := context.Background()
	registry := NewChatRegistry()

	added, err := registry.Add(ctx, "42")
	if err != nil || !added {
		t.Fatalf("expected first add to succeed, added=%v err=%v", added, err)
	}
	added, err = registry.Add(ctx, "42")
	if err != nil || added {
		t.Fatalf("expected duplicate to be ignored, added=%v err=%v", added, err)
	}

	chats, err := registry.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(chats) != 1 || chats[0] != "42" {
		t.Fatalf("expected registry {42}, got %v", chats)
	}
}

func TestChatRegistrySeedDeduplicates(t *testing.T) {
	registry := NewChatRegistry("a", "b", "a")
	chats, _ := registry.All(context.Background())
	if len(chats) != 2 {
		t.Fatalf("expected 2 seeded chats, got %v", chats)
	}
}

func TestChatRegistryConcurrentFirstContact(t *testing.T) {
	ctx := context.Background()
	registry := NewChatRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = registry.Add(ctx, "42")
		}()
	}
	wg.Wait()

	chats, _ := registry.All(ctx)
	if len(chats) != 1 {
		t.Fatalf("expected a single entry after concurrent adds, got %v", chats)
	}
}
