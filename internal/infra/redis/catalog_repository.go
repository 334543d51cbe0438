package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"globetrotter-service/internal/domain"
)

// CatalogLoader fetches the full catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Destination, error)
}

const (
	// CatalogKey holds the JSON-encoded catalog snapshot.
	CatalogKey = "catalog:destinations"
	// CatalogGenKey is bumped on every invalidation so loads that overlap one are not cached.
	CatalogGenKey = "catalog:destinations:gen"
)

// CatalogRepository caches the catalog in Redis and falls back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) ([]domain.Destination, error) {
	if catalog, ok := r.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}

		gen, err := r.generation(ctx, r.client)
		if err != nil {
			return nil, err
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(catalog)
		if err != nil {
			return nil, fmt.Errorf("encode catalog: %w", err)
		}
		// best-effort: a failed or skipped write only costs another load
		_ = r.store(ctx, gen, payload)
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Destination), nil
}

// Invalidate deletes the cached snapshot so every instance reloads on next read.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	r.sf.Forget(CatalogKey)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, CatalogGenKey)
		pipe.Del(ctx, CatalogKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	return nil
}

// store writes the snapshot only if no invalidation happened since gen was read.
func (r *CatalogRepository) store(ctx context.Context, gen int64, payload []byte) error {
	ttl := r.ttlWithJitter()
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, CatalogKey, payload, ttl)
			return nil
		})
		return err
	}, CatalogGenKey)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *CatalogRepository) generation(ctx context.Context, c getter) (int64, error) {
	gen, err := c.Get(ctx, CatalogGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read catalog generation: %w", err)
	}
	return gen, nil
}

func (r *CatalogRepository) cached(ctx context.Context) ([]domain.Destination, bool) {
	raw, err := r.client.Get(ctx, CatalogKey).Bytes()
	if err != nil {
		return nil, false
	}
	var catalog []domain.Destination
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
