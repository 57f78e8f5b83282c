package store

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Provider resolves the store of a visitor
type Provider interface {
	Get(ctx context.Context, visitorID string) *Store
}

// Registry hands out one hydrated store per visitor. Stores are kept in an
// LRU; an evicted visitor gets a fresh store read back from storage on their
// next request.
type Registry struct {
	mu          sync.Mutex
	kv          domain.KeyValueStore
	stores      *lru.Cache[string, *Store]
	adapterOpts []storage.Option
	storeOpts   []Option
	sink        Sink
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithAdapterOptions applies opts to every visitor's storage adapter
func WithAdapterOptions(opts ...storage.Option) RegistryOption {
	return func(r *Registry) { r.adapterOpts = append(r.adapterOpts, opts...) }
}

// WithStoreOptions applies opts to every visitor's store
func WithStoreOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.storeOpts = append(r.storeOpts, opts...) }
}

// WithEventSink forwards every visitor's events to sink, scoped by visitor id
func WithEventSink(sink Sink) RegistryOption {
	return func(r *Registry) { r.sink = sink }
}

// NewRegistry creates a registry keeping at most size stores in memory
func NewRegistry(kv domain.KeyValueStore, size int, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{kv: kv}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.NewWithEvict(size, func(visitorID string, _ *Store) {
		logger.Logger.Debug().Str("visitor_id", visitorID).Msg("Evicted favorites store")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store registry: %w", err)
	}
	r.stores = cache
	return r, nil
}

// Get returns the store of visitorID, creating and hydrating it on first use.
// Hydration runs without the registry lock so a slow backend read only
// delays that visitor; if two requests race, the first store inserted wins.
func (r *Registry) Get(ctx context.Context, visitorID string) *Store {
	r.mu.Lock()
	s, ok := r.stores.Get(visitorID)
	r.mu.Unlock()
	if ok {
		return s
	}

	adapter := storage.NewAdapter(repository.Scoped(r.kv, visitorID), r.adapterOpts...)
	opts := r.storeOpts
	if r.sink != nil {
		opts = append(opts[:len(opts):len(opts)], WithSink(r.sink, visitorID))
	}
	s = New(adapter, opts...)
	s.Initialize(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores.Get(visitorID); ok {
		return existing
	}
	r.stores.Add(visitorID, s)
	logger.Debug(ctx).
		Str("visitor_id", visitorID).
		Int("favorites", s.Count()).
		Msg("Hydrated favorites store")
	return s
}

// Adapter returns a storage adapter over visitorID's key space without
// creating a store
func (r *Registry) Adapter(visitorID string) *storage.Adapter {
	return storage.NewAdapter(repository.Scoped(r.kv, visitorID), r.adapterOpts...)
}

// Forget drops the in-memory store of visitorID
func (r *Registry) Forget(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores.Remove(visitorID)
}

var _ Provider = (*Registry)(nil)

// Len returns the number of stores held in memory
func (r *Registry) Len() int {
	return r.stores.Len()
}
