package kafka

import (
	"time"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// FavoritesUpdatedEvent is published after every successful favorites mutation
type FavoritesUpdatedEvent struct {
	EventID     string             `json:"event_id"`
	EventType   string             `json:"event_type"`
	VisitorID   string             `json:"visitor_id"`
	Action      string             `json:"action"`
	ProductID   domain.ProductID   `json:"product_id,omitempty"`
	ProductName string             `json:"product_name,omitempty"`
	Category    string             `json:"category,omitempty"`
	Removed     []domain.ProductID `json:"removed,omitempty"`
	Count       int                `json:"count"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Event types
const (
	EventTypeFavoritesUpdated = "favorites.updated"
)

// Kafka topics
const (
	TopicFavoritesUpdated = "favorites-updated"
)

// NewFavoritesUpdatedEvent converts a store event of visitorID
func NewFavoritesUpdatedEvent(visitorID string, e store.Event) FavoritesUpdatedEvent {
	ev := FavoritesUpdatedEvent{
		EventID:   e.ID,
		EventType: EventTypeFavoritesUpdated,
		VisitorID: visitorID,
		Action:    string(e.Action),
		ProductID: e.ProductID,
		Removed:   e.Removed,
		Count:     e.Count,
		Timestamp: e.At,
	}
	if e.Product != nil {
		ev.ProductName = e.Product.Name
		ev.Category = e.Product.Category
	}
	return ev
}

// StoreEvent converts the event back into the form the store publishes
func (e FavoritesUpdatedEvent) StoreEvent() store.Event {
	ev := store.Event{
		ID:        e.EventID,
		Action:    store.EventAction(e.Action),
		ProductID: e.ProductID,
		Removed:   e.Removed,
		Count:     e.Count,
		At:        e.Timestamp,
	}
	if e.Action == string(store.EventAdd) {
		ev.Product = &domain.Product{ID: e.ProductID, Name: e.ProductName, Category: e.Category}
	}
	return ev
}
