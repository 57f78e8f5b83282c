package popularity

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// Entry is the number of visitors currently holding a product as favorite
type Entry struct {
	ProductID domain.ProductID `json:"productId"`
	Name      string           `json:"name,omitempty"`
	Count     int              `json:"count"`
}

// Tally keeps running favorite counts per product from the event stream.
// Imports replace a collection without listing it, so they are not counted.
type Tally struct {
	mu      sync.RWMutex
	entries map[domain.ProductID]*Entry
}

func NewTally() *Tally {
	return &Tally{entries: make(map[domain.ProductID]*Entry)}
}

// Publish applies e, making a Tally usable as the store's event sink when
// events are not routed through Kafka
func (t *Tally) Publish(_ context.Context, _ string, e store.Event) error {
	t.Apply(e)
	return nil
}

var _ store.Sink = (*Tally)(nil)

// Apply folds one event into the tally
func (t *Tally) Apply(e store.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Action {
	case store.EventAdd:
		entry := t.entry(e.ProductID)
		entry.Count++
		if e.Product != nil && e.Product.Name != "" {
			entry.Name = e.Product.Name
		}
	case store.EventRemove, store.EventClear:
		for _, id := range e.Removed {
			t.decrement(id)
		}
	}
}

func (t *Tally) entry(id domain.ProductID) *Entry {
	entry, ok := t.entries[id]
	if !ok {
		entry = &Entry{ProductID: id}
		t.entries[id] = entry
	}
	return entry
}

func (t *Tally) decrement(id domain.ProductID) {
	entry, ok := t.entries[id]
	if !ok {
		return
	}
	entry.Count--
	if entry.Count <= 0 {
		delete(t.entries, id)
	}
}

// Top returns the n most favorited products, ties broken by id
func (t *Tally) Top(n int) []Entry {
	t.mu.RLock()
	out := make([]Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, *entry)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
