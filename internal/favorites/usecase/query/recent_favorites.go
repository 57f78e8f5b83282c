package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// RecentFavoritesQuery represents the query for the most recently added favorites
type RecentFavoritesQuery struct {
	VisitorID string
	Limit     int // Default domain.DefaultRecentLimit
}

// RecentFavoritesHandler handles recent favorites query
type RecentFavoritesHandler struct {
	stores store.Provider
}

// NewRecentFavoritesHandler creates a new recent favorites handler
func NewRecentFavoritesHandler(stores store.Provider) *RecentFavoritesHandler {
	return &RecentFavoritesHandler{stores: stores}
}

// Handle executes the recent favorites query
func (h *RecentFavoritesHandler) Handle(ctx context.Context, q RecentFavoritesQuery) ([]domain.FavoriteItem, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}
	items := h.stores.Get(ctx, q.VisitorID).State().Favorites
	return storage.SortRecent(items, q.Limit), nil
}
