package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizhub-service/internal/domain"
)

// PoolLoader fetches pool content from a backing store (e.g., Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, name string) (domain.Pool, error)
	PoolNames(ctx context.Context) ([]string, error)
	SavePool(ctx context.Context, pool domain.Pool) error
}

// PoolRepository caches pools with TTL to avoid repeated backing-store
// hits; pools are immutable once uploaded, so a stale window only delays
// visibility of brand-new pools.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPool
}

type cachedPool struct {
	pool      domain.Pool
	expiresAt time.Time
}

func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

func (r *PoolRepository) Get(ctx context.Context, name string) (domain.Pool, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.pool, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.pool, nil
		}
		r.mu.RUnlock()

		pool, err := r.loader.LoadPool(ctx, name)
		if err != nil {
			return domain.Pool{}, err
		}

		r.mu.Lock()
		r.cache[name] = cachedPool{pool: pool, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
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
	r.mu.Lock()
	delete(r.cache, pool.Name)
	r.mu.Unlock()
	return nil
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader is a simple loader backed by an in-memory map (useful
// for tests and for running without Postgres).
type StaticPoolLoader struct {
	mu    sync.RWMutex
	pools map[string]domain.Pool
}

func NewStaticPoolLoader(pools map[string]domain.Pool) *StaticPoolLoader {
	if pools == nil {
		pools = make(map[string]domain.Pool)
	}
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, name string) (domain.Pool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if pool, ok := l.pools[name]; ok {
		return pool, nil
	}
	return domain.Pool{}, domain.ErrPoolNotFound
}

func (l *StaticPoolLoader) PoolNames(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.pools))
	for name := range l.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *StaticPoolLoader) SavePool(_ context.Context, pool domain.Pool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pools[pool.Name] = pool
	return nil
}
