package memory

import (
	"context"
	"testing"

	"quizhub-service/internal/domain"
)

func TestUserStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user := domain.User{ID: "u1", DisplayName: "Alice", ScoresByPool: map[string]domain.Score{}, Level: 1}
	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, user); err != domain.ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := store.Get(ctx, "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	updated, err := store.Update(ctx, "u1", func(u *domain.User) error {
		u.ScoresByPool["PoolA"] = domain.Score{Correct: 1}
		u.Refresh()
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.XP != 10 {
		t.Fatalf("expected 10 xp, got %d", updated.XP)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

func TestUserStoreGetDetachesScores(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	_ = store.Create(ctx, domain.User{ID: "u1", DisplayName: "Alice", ScoresByPool: map[string]domain.Score{}})

	got, _ := store.Get(ctx, "u1")
	got.ScoresByPool["PoolA"] = domain.Score{Correct: 99}

	fresh, _ := store.Get(ctx, "u1")
	if len(fresh.ScoresByPool) != 0 {
		t.Fatalf("mutation through Get leaked into the store: %+v", fresh.ScoresByPool)
	}
}
