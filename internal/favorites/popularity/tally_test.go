package popularity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

func added(id domain.ProductID, name string) store.Event {
	return store.Event{Action: store.EventAdd, ProductID: id, Product: &domain.Product{ID: id, Name: name}}
}

func TestTallyRanksProducts(t *testing.T) {
	tally := NewTally()
	tally.Apply(added("1", "Desk"))
	tally.Apply(added("2", "Chair"))
	tally.Apply(added("2", "Chair"))
	tally.Apply(added("3", "Sofa"))
	tally.Apply(added("3", "Sofa"))
	tally.Apply(added("3", "Sofa"))

	assert.Equal(t, []Entry{
		{ProductID: "3", Name: "Sofa", Count: 3},
		{ProductID: "2", Name: "Chair", Count: 2},
	}, tally.Top(2))
	assert.Len(t, tally.Top(0), 3)
}

func TestTallyRemoveAndClear(t *testing.T) {
	tally := NewTally()
	tally.Apply(added("1", "Desk"))
	tally.Apply(added("2", "Chair"))
	tally.Apply(added("2", "Chair"))

	tally.Apply(store.Event{Action: store.EventRemove, ProductID: "2", Removed: []domain.ProductID{"2"}})
	tally.Apply(store.Event{Action: store.EventClear, Removed: []domain.ProductID{"1", "2"}})
	// Removing something never counted is ignored.
	tally.Apply(store.Event{Action: store.EventRemove, ProductID: "99", Removed: []domain.ProductID{"99"}})
	tally.Apply(store.Event{Action: store.EventImport, Count: 10})

	assert.Empty(t, tally.Top(10))
}

func TestTallyTiesOrderedByID(t *testing.T) {
	tally := NewTally()
	tally.Apply(added("b", "B"))
	tally.Apply(added("a", "A"))

	top := tally.Top(10)
	assert.Equal(t, domain.ProductID("a"), top[0].ProductID)
	assert.Equal(t, domain.ProductID("b"), top[1].ProductID)
}

func TestTallyConcurrentApply(t *testing.T) {
	tally := NewTally()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tally.Apply(added("1", "Desk"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tally.Top(1)[0].Count)
}

func TestTallyAsSink(t *testing.T) {
	tally := NewTally()
	var sink store.Sink = tally

	require.NoError(t, sink.Publish(context.Background(), "visitor", store.Event{Action: store.EventAdd, ProductID: "1"}))
	assert.Equal(t, 1, tally.Top(0)[0].Count)
}

func TestTallyIgnoresRemovalOfUnsavedProduct(t *testing.T) {
	tally := NewTally()
	tally.Apply(added("7", "Desk"))
	tally.Apply(added("7", "Desk"))

	// A visitor who never saved the product removes it twice.
	tally.Apply(store.Event{Action: store.EventRemove, ProductID: "7"})
	tally.Apply(store.Event{Action: store.EventRemove, ProductID: "7"})

	assert.Equal(t, []Entry{{ProductID: "7", Name: "Desk", Count: 2}}, tally.Top(0))
}

func TestTallyFedByStoresCountsOnlyRealRemovals(t *testing.T) {
	ctx := context.Background()
	tally := NewTally()
	r, err := store.NewRegistry(repository.NewMemoryStore(0), 8, store.WithEventSink(tally))
	require.NoError(t, err)

	desk := domain.Product{ID: "7", Name: "Desk"}
	require.True(t, r.Get(ctx, "alice").Add(ctx, desk).Success)
	require.True(t, r.Get(ctx, "carol").Add(ctx, desk).Success)

	assert.True(t, r.Get(ctx, "bob").Remove(ctx, "7").Success)
	assert.True(t, r.Get(ctx, "bob").Remove(ctx, "7").Success)
	assert.Equal(t, []Entry{{ProductID: "7", Name: "Desk", Count: 2}}, tally.Top(0))

	require.True(t, r.Get(ctx, "alice").Remove(ctx, "7").Success)
	assert.Equal(t, []Entry{{ProductID: "7", Name: "Desk", Count: 1}}, tally.Top(0))
}
