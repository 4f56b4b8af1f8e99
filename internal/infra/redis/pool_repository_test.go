package redis

import (
	"context"
	"testing"
	"time"

	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func TestPoolRepositoryCachesInRedis(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	loader := &countingLoader{
		PoolLoader: memory.NewStaticPoolLoader(map[string]domain.Pool{
			"PoolA": samplePool(),
		}),
	}
	repo := NewPoolRepository(client, loader, time.Minute)

	pool, err := repo.Get(ctx, "PoolA")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if len(pool.Questions) != 1 {
		t.Fatalf("unexpected pool: %+v", pool)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the Redis cache.
	if _, err := repo.Get(ctx, "PoolA"); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestPoolRepositoryPutInvalidates(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	loader := memory.NewStaticPoolLoader(map[string]domain.Pool{"PoolA": samplePool()})
	repo := NewPoolRepository(client, loader, time.Minute)

	if _, err := repo.Get(ctx, "PoolA"); err != nil {
		t.Fatalf("get: %v", err)
	}

	updated := samplePool()
	updated.Questions = append(updated.Questions, domain.Question{
		Text: "extra", Options: []string{"x", "y"}, Correct: 1,
	})
	if err := repo.Put(ctx, updated); err != nil {
		t.Fatalf("put: %v", err)
	}

	pool, err := repo.Get(ctx, "PoolA")
	if err != nil {
		t.Fatalf("get after put: %v", err)
	}
	if len(pool.Questions) != 2 {
		t.Fatalf("expected refreshed pool, got %+v", pool)
	}
}

func TestPoolRepositoryUnknownPool(t *testing.T) {
	repo := NewPoolRepository(newTestClient(t), memory.NewStaticPoolLoader(nil), time.Minute)
	if _, err := repo.Get(context.Background(), "missing"); err != domain.ErrPoolNotFound {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

type countingLoader struct {
	memory.PoolLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, name string) (domain.Pool, error) {
	l.calls++
	return l.PoolLoader.LoadPool(ctx, name)
}

func samplePool() domain.Pool {
	return domain.Pool{
		Name: "PoolA",
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Options: []string{"3", "4"}, Correct: 1},
		},
	}
}
