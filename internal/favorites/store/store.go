package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Storage is the persistence the store is built on
type Storage interface {
	Read(ctx context.Context) []domain.FavoriteItem
	Add(ctx context.Context, p domain.Product) domain.Result
	Remove(ctx context.Context, id domain.ProductID) domain.Result
	Clear(ctx context.Context) bool
	Import(ctx context.Context, raw []byte) domain.ImportResult
	Export(ctx context.Context) domain.Export
}

// Sink receives every event after it has been published locally, tagged
// with the scope (visitor id) of the store
type Sink interface {
	Publish(ctx context.Context, scope string, e Event) error
}

// Observer sees every reducer transition. It runs with the store locked and
// must not call back into the store.
type Observer func(prev, next State, action Action)

// Option configures a Store
type Option func(*Store)

// WithObserver registers a state observer
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithSink forwards events to sink under the given scope
func WithSink(sink Sink, scope string) Option {
	return func(s *Store) {
		s.sink = sink
		s.scope = scope
	}
}

// WithBroker makes the store publish on an existing broker
func WithBroker(b *Broker) Option {
	return func(s *Store) { s.broker = b }
}

// WithClock sets the clock stamping events
func WithClock(c domain.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Store is the favorites state container of one visitor. Mutations are
// serialized; each moves the state through start and then succeed or fail.
type Store struct {
	mu        sync.Mutex
	storage   Storage
	state     State
	broker    *Broker
	observers []Observer
	sink      Sink
	scope     string
	clock     domain.Clock
}

// New creates an uninitialized store over storage
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		state:   State{Favorites: []domain.FavoriteItem{}},
		clock:   domain.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.broker == nil {
		s.broker = NewBroker()
	}
	return s
}

func (s *Store) dispatch(action Action) {
	prev := s.state
	s.state = Reduce(prev, action)
	for _, o := range s.observers {
		o(prev, s.state, action)
	}
}

// Initialize hydrates the store from storage once. An empty or unreadable
// collection still initializes it.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitialized(ctx)
}

func (s *Store) ensureInitialized(ctx context.Context) {
	if s.state.Initialized {
		return
	}
	s.dispatch(Action{Type: ActionInitialize, Favorites: s.storage.Read(ctx)})
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// IsFavorite reports whether id is in the current state
func (s *Store) IsFavorite(id domain.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(id)
}

func (s *Store) contains(id domain.ProductID) bool {
	for _, item := range s.state.Favorites {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Count returns the number of favorites in the current state
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Count
}

// Broker returns the broker events are published on
func (s *Store) Broker() *Broker {
	return s.broker
}

// Subscribe is shorthand for Broker().Subscribe
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	return s.broker.Subscribe(buffer)
}

// Add saves p as a favorite
func (s *Store) Add(ctx context.Context, p domain.Product) domain.Result {
	s.mu.Lock()
	res, ev := s.add(ctx, p)
	s.mu.Unlock()

	s.forward(ctx, ev)
	return res
}

// Remove drops the favorite with id
func (s *Store) Remove(ctx context.Context, id domain.ProductID) domain.Result {
	s.mu.Lock()
	res, ev := s.remove(ctx, id)
	s.mu.Unlock()

	s.forward(ctx, ev)
	return res
}

// Toggle removes p when it is a favorite and adds it otherwise. The
// membership check and the mutation happen under the same lock. The second
// return value reports membership before the toggle.
func (s *Store) Toggle(ctx context.Context, p domain.Product) (domain.Result, bool) {
	s.mu.Lock()
	s.ensureInitialized(ctx)

	wasFavorite := s.contains(p.ID)
	var (
		res domain.Result
		ev  *Event
	)
	if wasFavorite {
		res, ev = s.remove(ctx, p.ID)
	} else {
		res, ev = s.add(ctx, p)
	}
	s.mu.Unlock()

	s.forward(ctx, ev)
	return res, wasFavorite
}

// Clear deletes every favorite
func (s *Store) Clear(ctx context.Context) domain.Result {
	s.mu.Lock()
	s.ensureInitialized(ctx)

	removed := make([]domain.ProductID, 0, len(s.state.Favorites))
	for _, item := range s.state.Favorites {
		removed = append(removed, item.ID)
	}

	s.dispatch(Action{Type: ActionStart})
	if !s.storage.Clear(ctx) {
		s.dispatch(Action{Type: ActionFail, Error: domain.MsgClearFailed})
		res := domain.Result{Success: false, Message: domain.MsgClearFailed, Favorites: s.state.clone().Favorites}
		s.mu.Unlock()
		return res
	}
	s.dispatch(Action{Type: ActionSucceed})
	ev := s.publish(Event{Action: EventClear, Removed: removed})
	s.mu.Unlock()

	s.forward(ctx, ev)
	return domain.Result{Success: true, Message: domain.MsgCleared, Favorites: []domain.FavoriteItem{}}
}

// Import replaces the favorites with the ones in an export document
func (s *Store) Import(ctx context.Context, raw []byte) domain.ImportResult {
	s.mu.Lock()
	s.ensureInitialized(ctx)

	s.dispatch(Action{Type: ActionStart})
	res := s.storage.Import(ctx, raw)
	if !res.Success {
		s.dispatch(Action{Type: ActionFail, Error: res.Message})
		s.mu.Unlock()
		return res
	}
	s.dispatch(Action{Type: ActionSucceed, Favorites: s.storage.Read(ctx)})
	ev := s.publish(Event{Action: EventImport})
	s.mu.Unlock()

	s.forward(ctx, ev)
	return res
}

// Export snapshots the stored favorites
func (s *Store) Export(ctx context.Context) domain.Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Export(ctx)
}

func (s *Store) add(ctx context.Context, p domain.Product) (domain.Result, *Event) {
	s.ensureInitialized(ctx)

	s.dispatch(Action{Type: ActionStart})
	res := s.storage.Add(ctx, p)
	if !res.Success {
		s.dispatch(Action{Type: ActionFail, Error: res.Message})
		return res, nil
	}
	s.dispatch(Action{Type: ActionSucceed, Favorites: res.Favorites})
	return res, s.publish(Event{Action: EventAdd, Product: &p, ProductID: p.ID})
}

func (s *Store) remove(ctx context.Context, id domain.ProductID) (domain.Result, *Event) {
	s.ensureInitialized(ctx)

	present := s.contains(id)
	s.dispatch(Action{Type: ActionStart})
	res := s.storage.Remove(ctx, id)
	if !res.Success {
		s.dispatch(Action{Type: ActionFail, Error: res.Message})
		return res, nil
	}
	s.dispatch(Action{Type: ActionSucceed, Favorites: res.Favorites})

	// Removing an unknown id still succeeds but must not reach counters.
	ev := Event{Action: EventRemove, ProductID: id}
	if present {
		ev.Removed = []domain.ProductID{id}
	}
	return res, s.publish(ev)
}

// publish stamps e and hands it to local subscribers. Called with the lock
// held so subscribers see events in mutation order.
func (s *Store) publish(e Event) *Event {
	e.ID = uuid.NewString()
	e.Count = s.state.Count
	e.At = s.clock.Now().UTC()
	s.broker.Publish(e)
	return &e
}

// forward sends e to the sink outside the lock
func (s *Store) forward(ctx context.Context, e *Event) {
	if e == nil || s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, s.scope, *e); err != nil {
		logger.Warn(ctx).Err(err).
			Str("action", string(e.Action)).
			Msg("Failed to forward favorites event")
	}
}
