package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
)

func TestRegistryIsolatesVisitors(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(repository.NewMemoryStore(0), 8)
	require.NoError(t, err)

	alice := r.Get(ctx, "alice")
	bob := r.Get(ctx, "bob")
	require.True(t, alice.Add(ctx, desk).Success)

	assert.True(t, alice.IsFavorite("1"))
	assert.False(t, bob.IsFavorite("1"))
	assert.Same(t, alice, r.Get(ctx, "alice"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRehydratesEvictedStore(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(repository.NewMemoryStore(0), 1)
	require.NoError(t, err)

	first := r.Get(ctx, "alice")
	require.True(t, first.Add(ctx, desk).Success)
	require.True(t, first.Add(ctx, chair).Success)

	r.Get(ctx, "bob") // evicts alice
	assert.Equal(t, 1, r.Len())

	again := r.Get(ctx, "alice")
	assert.NotSame(t, first, again)
	assert.True(t, again.State().Initialized)
	assert.Equal(t, 2, again.Count())
}

func TestRegistryForwardsEventsWithVisitorScope(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	r, err := NewRegistry(repository.NewMemoryStore(0), 4, WithEventSink(sink))
	require.NoError(t, err)

	r.Get(ctx, "alice").Add(ctx, desk)
	r.Get(ctx, "bob").Add(ctx, chair)

	assert.Equal(t, []string{"alice", "bob"}, sink.scopes)
}

func TestRegistryForget(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(repository.NewMemoryStore(0), 4)
	require.NoError(t, err)

	r.Get(ctx, "alice")
	r.Forget("alice")
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.Adapter("alice").Count(ctx))
}

func TestNewRegistryRejectsInvalidSize(t *testing.T) {
	_, err := NewRegistry(repository.NewMemoryStore(0), 0)
	require.Error(t, err)
}

// gatedStore blocks reads of one visitor's keys until release is closed
type gatedStore struct {
	domain.KeyValueStore
	prefix  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.HasPrefix(key, g.prefix) {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.KeyValueStore.Get(ctx, key)
}

func TestRegistryHydratesVisitorsConcurrently(t *testing.T) {
	ctx := context.Background()
	kv := &gatedStore{
		KeyValueStore: repository.NewMemoryStore(0),
		prefix:        "visitor:slow:",
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	r, err := NewRegistry(kv, 8)
	require.NoError(t, err)

	slow := make(chan *Store)
	go func() { slow <- r.Get(ctx, "slow") }()
	<-kv.entered

	done := make(chan *Store)
	go func() { done <- r.Get(ctx, "fast") }()
	select {
	case s := <-done:
		assert.True(t, s.State().Initialized)
	case <-time.After(time.Second):
		t.Fatal("hydrating one visitor blocked another")
	}

	close(kv.release)
	s := <-slow
	assert.True(t, s.State().Initialized)
	assert.Same(t, s, r.Get(ctx, "slow"))
}

func TestRegistryConcurrentFirstUseSharesOneStore(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(repository.NewMemoryStore(0), 8)
	require.NoError(t, err)

	stores := make([]*Store, 16)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = r.Get(ctx, "alice")
		}(i)
	}
	wg.Wait()

	want := r.Get(ctx, "alice")
	for _, s := range stores {
		assert.Same(t, want, s)
	}
	assert.Same(t, want, r.Get(ctx, "alice"))
	assert.Equal(t, 1, r.Len())
}
