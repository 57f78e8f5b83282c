package store

import (
	"sync"
	"time"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// EventAction is the kind of mutation an Event reports
type EventAction string

const (
	EventAdd    EventAction = "add"
	EventRemove EventAction = "remove"
	EventClear  EventAction = "clear"
	EventImport EventAction = "import"
)

// Event is published after every successful mutation. Product is set for
// add, ProductID for add and remove. Removed lists the ids that actually left
// the collection on remove and clear.
type Event struct {
	ID        string             `json:"id"`
	Action    EventAction        `json:"action"`
	Product   *domain.Product    `json:"product,omitempty"`
	ProductID domain.ProductID   `json:"productId,omitempty"`
	Removed   []domain.ProductID `json:"removed,omitempty"`
	Count     int                `json:"count"`
	At        time.Time          `json:"at"`
}

// Broker fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel receiving future events and a function that
// unsubscribes and closes it
func (b *Broker) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room for it
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			logger.Logger.Warn().
				Int("subscriber", id).
				Str("action", string(e.Action)).
				Msg("Dropped favorites event for slow subscriber")
		}
	}
}

// Subscribers returns the number of active subscriptions
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
