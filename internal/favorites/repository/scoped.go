package repository

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// ScopedStore confines a shared key-value store to one visitor by prefixing
// every key, giving each visitor its own "local storage".
type ScopedStore struct {
	inner  domain.KeyValueStore
	prefix string
}

// Scoped returns a view of kv restricted to the given visitor
func Scoped(kv domain.KeyValueStore, visitorID string) *ScopedStore {
	return &ScopedStore{
		inner:  kv,
		prefix: "visitor:" + visitorID + ":",
	}
}

func (s *ScopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

var _ domain.KeyValueStore = (*ScopedStore)(nil)
