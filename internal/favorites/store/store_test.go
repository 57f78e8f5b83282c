package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/testutil"
)

var (
	desk  = domain.Product{ID: "1", Name: "Desk", Category: "Office"}
	chair = domain.Product{ID: "2", Name: "Ergonomic Chair", Category: "Office"}
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *repository.MemoryStore) {
	t.Helper()
	kv := repository.NewMemoryStore(0)
	adapter := storage.NewAdapter(kv, storage.WithClock(testutil.TickingClock(time.Second)))
	return New(adapter, opts...), kv
}

type recordingSink struct {
	mu     sync.Mutex
	scopes []string
	events []Event
	err    error
}

func (r *recordingSink) Publish(_ context.Context, scope string, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
	r.events = append(r.events, e)
	return r.err
}

func TestReduce(t *testing.T) {
	items := []domain.FavoriteItem{{ID: "1"}, {ID: "2"}}

	s := Reduce(State{}, Action{Type: ActionInitialize})
	assert.True(t, s.Initialized)
	assert.NotNil(t, s.Favorites)
	assert.Equal(t, 0, s.Count)

	s = Reduce(s, Action{Type: ActionStart})
	assert.True(t, s.Loading)

	s = Reduce(s, Action{Type: ActionFail, Error: "boom"})
	assert.False(t, s.Loading)
	assert.Equal(t, "boom", s.Error)

	s = Reduce(s, Action{Type: ActionStart})
	s = Reduce(s, Action{Type: ActionSucceed, Favorites: items})
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, 2, s.Count)

	// The reducer copies the slice it is given.
	items[0].ID = "changed"
	assert.Equal(t, domain.ProductID("1"), s.Favorites[0].ID)
}

func TestInitializeHydratesOnce(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore(0)
	adapter := storage.NewAdapter(kv)
	require.True(t, adapter.Add(ctx, desk).Success)

	s := New(adapter)
	assert.False(t, s.State().Initialized)

	s.Initialize(ctx)
	st := s.State()
	assert.True(t, st.Initialized)
	assert.Equal(t, 1, st.Count)

	// A second initialize does not re-read storage.
	require.True(t, adapter.Add(ctx, chair).Success)
	s.Initialize(ctx)
	assert.Equal(t, 1, s.Count())
}

func TestInitializeWithUnreadableStorage(t *testing.T) {
	kv := repository.NewMemoryStore(0)
	kv.FailOn("get", errors.New("storage disabled"))

	s := New(storage.NewAdapter(kv))
	s.Initialize(context.Background())

	st := s.State()
	assert.True(t, st.Initialized)
	assert.Equal(t, 0, st.Count)
}

func TestLoadingWrapsEveryMutation(t *testing.T) {
	ctx := context.Background()
	var actions []ActionType
	var loadingDuringCall []bool
	s, kv := newTestStore(t, WithObserver(func(prev, next State, a Action) {
		actions = append(actions, a.Type)
		if a.Type == ActionStart {
			loadingDuringCall = append(loadingDuringCall, next.Loading)
		}
	}))
	s.Initialize(ctx)

	s.Add(ctx, desk)
	s.Add(ctx, desk) // duplicate fails
	s.Remove(ctx, "1")
	kv.FailOn("delete", errors.New("locked"))
	s.Clear(ctx)

	assert.Equal(t, []ActionType{
		ActionInitialize,
		ActionStart, ActionSucceed,
		ActionStart, ActionFail,
		ActionStart, ActionSucceed,
		ActionStart, ActionFail,
	}, actions)
	assert.Equal(t, []bool{true, true, true, true}, loadingDuringCall)
	assert.False(t, s.State().Loading)
}

func TestErrorIsAdvisory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.Initialize(ctx)

	require.True(t, s.Add(ctx, desk).Success)
	res := s.Add(ctx, desk)
	assert.False(t, res.Success)
	assert.Equal(t, domain.MsgAlreadyExists, s.State().Error)

	// The next success clears it.
	require.True(t, s.Add(ctx, chair).Success)
	assert.Empty(t, s.State().Error)
	assert.Equal(t, 2, s.Count())
}

func TestWriteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)
	require.True(t, s.Add(ctx, desk).Success)

	kv.FailOn("set", domain.ErrQuotaExceeded)
	res := s.Add(ctx, chair)
	assert.False(t, res.Success)
	assert.Equal(t, domain.MsgSaveFailed, res.Message)

	st := s.State()
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, domain.MsgSaveFailed, st.Error)
	assert.True(t, s.IsFavorite("1"))
	assert.False(t, s.IsFavorite("2"))
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	res, was := s.Toggle(ctx, desk)
	assert.True(t, res.Success)
	assert.False(t, was)
	assert.True(t, s.IsFavorite("1"))

	res, was = s.Toggle(ctx, desk)
	assert.True(t, res.Success)
	assert.True(t, was)
	assert.False(t, s.IsFavorite("1"))
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.Initialize(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle(ctx, desk)
		}()
	}
	wg.Wait()

	// An even number of toggles leaves the product out.
	assert.False(t, s.IsFavorite("1"))
	assert.Equal(t, 0, s.Count())
}

func TestEventsArePublished(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	s, _ := newTestStore(t, WithSink(sink, "visitor-1"), WithClock(testutil.FixedClock()))
	events, unsubscribe := s.Subscribe(10)
	defer unsubscribe()

	s.Add(ctx, desk)
	s.Add(ctx, desk) // duplicate: no event
	s.Add(ctx, chair)
	s.Remove(ctx, "1")
	s.Clear(ctx)

	var got []Event
	for i := 0; i < 4; i++ {
		select {
		case e := <-events:
			got = append(got, e)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	require.Len(t, got, 4)
	assert.Equal(t, EventAdd, got[0].Action)
	require.NotNil(t, got[0].Product)
	assert.Equal(t, "Desk", got[0].Product.Name)
	assert.Equal(t, 1, got[0].Count)

	assert.Equal(t, EventAdd, got[1].Action)
	assert.Equal(t, 2, got[1].Count)

	assert.Equal(t, EventRemove, got[2].Action)
	assert.Equal(t, domain.ProductID("1"), got[2].ProductID)
	assert.Equal(t, []domain.ProductID{"1"}, got[2].Removed)
	assert.Equal(t, 1, got[2].Count)

	assert.Equal(t, EventClear, got[3].Action)
	assert.Equal(t, []domain.ProductID{"2"}, got[3].Removed)
	assert.Equal(t, 0, got[3].Count)

	for _, e := range got {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, testutil.FixedClock().Now(), e.At)
	}

	require.Len(t, sink.events, 4)
	assert.Equal(t, []string{"visitor-1", "visitor-1", "visitor-1", "visitor-1"}, sink.scopes)
}

func TestRemovingUnsavedProductReportsNothingRemoved(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	s, _ := newTestStore(t, WithSink(sink, "bob"))

	res := s.Remove(ctx, "7")
	assert.True(t, res.Success)

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventRemove, sink.events[0].Action)
	assert.Equal(t, domain.ProductID("7"), sink.events[0].ProductID)
	assert.Empty(t, sink.events[0].Removed)
}

func TestSinkFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("broker down")}
	s, _ := newTestStore(t, WithSink(sink, "v"))

	res := s.Add(ctx, desk)
	assert.True(t, res.Success)
	assert.Len(t, sink.events, 1)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.True(t, s.Add(ctx, desk).Success)
	events, unsubscribe := s.Subscribe(1)
	defer unsubscribe()

	res := s.Import(ctx, []byte(`{"favorites":[{"id":5,"name":"Lamp"},{"id":6,"name":"Rug"}]}`))
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.IsFavorite("1"))

	e := <-events
	assert.Equal(t, EventImport, e.Action)
	assert.Equal(t, 2, e.Count)

	res = s.Import(ctx, []byte(`{"nope":true}`))
	assert.False(t, res.Success)
	assert.Equal(t, domain.MsgInvalidImport, s.State().Error)
	assert.Equal(t, 2, s.Count())
}

func TestStateSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.True(t, s.Add(ctx, desk).Success)

	st := s.State()
	st.Favorites[0].Name = "mutated"
	assert.Equal(t, "Desk", s.State().Favorites[0].Name)
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch, unsubscribe := b.Subscribe(1)

	b.Publish(Event{Action: EventAdd})
	b.Publish(Event{Action: EventRemove}) // buffer full, dropped

	assert.Equal(t, EventAdd, (<-ch).Action)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e.Action)
	default:
	}

	assert.Equal(t, 1, b.Subscribers())
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, b.Subscribers())

	_, open := <-ch
	assert.False(t, open)
}
