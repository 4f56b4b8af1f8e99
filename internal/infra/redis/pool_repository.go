package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

// PoolRepository caches pool JSON in Redis (pool:{name}) and falls back
// to a loader on cache miss.
type PoolRepository struct {
	client *redis.Client
	loader memory.PoolLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPoolRepository(client *redis.Client, loader memory.PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PoolRepository) Get(ctx context.Context, name string) (domain.Pool, error) {
	key := r.key(name)

	if pool, ok := r.cached(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.cached(ctx, key); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx, name)
		if err != nil {
			return domain.Pool{}, err
		}

		raw, err := json.Marshal(pool)
		if err != nil {
			return domain.Pool{}, fmt.Errorf("marshal pool: %w", err)
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		return pool, nil
	})
	if err != nil {
		return domain.Pool{}, err
	}
	return result.(domain.Pool), nil
}

func (r *PoolRepository) Names(ctx context.Context) ([]string, error) {
	return r.loader.PoolNames(ctx)
}

func (r *PoolRepository) Put(ctx context.Context, pool domain.Pool) error {
	if err := r.loader.SavePool(ctx, pool); err != nil {
		return err
	}
	return r.client.Del(ctx, r.key(pool.Name)).Err()
}

func (r *PoolRepository) cached(ctx context.Context, key string) (domain.Pool, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Pool{}, false
	}
	var pool domain.Pool
	if err := json.Unmarshal(raw, &pool); err != nil {
		return domain.Pool{}, false
	}
	return pool, true
}

func (r *PoolRepository) key(name string) string {
	return "pool:" + name
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
