package query

import (
	"context"
	"time"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// GetStatsQuery represents the query to summarize a visitor's favorites
type GetStatsQuery struct {
	VisitorID string
}

// FavoritesStats represents favorites statistics
type FavoritesStats struct {
	Total         int                  `json:"total"`
	Categories    int                  `json:"categories"`
	ByCategory    map[string]int       `json:"byCategory"`
	Newest        *domain.FavoriteItem `json:"newest,omitempty"`
	Oldest        *domain.FavoriteItem `json:"oldest,omitempty"`
	AddedLastWeek int                  `json:"addedLastWeek"`
}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	stores store.Provider
	clock  domain.Clock
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(stores store.Provider, clock domain.Clock) *GetStatsHandler {
	return &GetStatsHandler{stores: stores, clock: clock}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*FavoritesStats, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}

	items := h.stores.Get(ctx, q.VisitorID).State().Favorites
	weekAgo := h.clock.Now().Add(-7 * 24 * time.Hour)

	stats := &FavoritesStats{
		Total:      len(items),
		ByCategory: make(map[string]int),
	}
	for i := range items {
		item := items[i]
		stats.ByCategory[item.CategoryOrUnknown()]++
		if item.AddedAt.After(weekAgo) {
			stats.AddedLastWeek++
		}
		if stats.Newest == nil || item.AddedAt.After(stats.Newest.AddedAt) {
			stats.Newest = &item
		}
		if stats.Oldest == nil || item.AddedAt.Before(stats.Oldest.AddedAt) {
			stats.Oldest = &item
		}
	}
	stats.Categories = len(stats.ByCategory)

	return stats, nil
}
