package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Cache stores encoded catalog responses
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	hash := sha256.Sum256([]byte(k))
	return fmt.Sprintf("%s:catalog:%s", c.prefix, hex.EncodeToString(hash[:]))
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// CachedService serves the public catalog reads from a cache. Admin calls
// and contact submissions always reach the backend.
type CachedService struct {
	domain.Service
	cache Cache
	ttl   time.Duration
}

func NewCachedService(inner domain.Service, cache Cache, ttl time.Duration) *CachedService {
	return &CachedService{Service: inner, cache: cache, ttl: ttl}
}

func (s *CachedService) Categories(ctx context.Context) ([]domain.Category, error) {
	return cached(ctx, s, "categories", s.Service.Categories)
}

func (s *CachedService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return cached(ctx, s, "products/"+id, func(ctx context.Context) (*domain.Product, error) {
		return s.Service.Product(ctx, id)
	})
}

func (s *CachedService) ProductImages(ctx context.Context, id string) ([]domain.ProductImage, error) {
	return cached(ctx, s, "products/"+id+"/images", func(ctx context.Context) ([]domain.ProductImage, error) {
		return s.Service.ProductImages(ctx, id)
	})
}

func (s *CachedService) ProductFiles(ctx context.Context, id string) ([]domain.ProductFile, error) {
	return cached(ctx, s, "products/"+id+"/files", func(ctx context.Context) ([]domain.ProductFile, error) {
		return s.Service.ProductFiles(ctx, id)
	})
}

func (s *CachedService) Solutions(ctx context.Context) ([]domain.Solution, error) {
	return cached(ctx, s, "solutions", s.Service.Solutions)
}

func (s *CachedService) Certifications(ctx context.Context) ([]domain.Certification, error) {
	return cached(ctx, s, "certifications", s.Service.Certifications)
}

// cached reads key from the cache and falls through to load on a miss or a
// cache failure. Only successful loads are stored.
func cached[T any](ctx context.Context, s *CachedService, key string, load func(context.Context) (T, error)) (T, error) {
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Catalog cache read failed")
	} else if ok {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			logger.Debug(ctx).Str("cache_key", key).Msg("Cache hit")
			return out, nil
		}
	}

	out, err := load(ctx)
	if err != nil {
		return out, err
	}

	b, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache catalog response")
	}
	return out, nil
}

var _ domain.Service = (*CachedService)(nil)
