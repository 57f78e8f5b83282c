package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// GroupByCategoryQuery represents the query partitioning favorites by category
type GroupByCategoryQuery struct {
	VisitorID string
}

// GroupByCategoryHandler handles group by category query
type GroupByCategoryHandler struct {
	stores store.Provider
}

// NewGroupByCategoryHandler creates a new group by category handler
func NewGroupByCategoryHandler(stores store.Provider) *GroupByCategoryHandler {
	return &GroupByCategoryHandler{stores: stores}
}

// Handle executes the group by category query
func (h *GroupByCategoryHandler) Handle(ctx context.Context, q GroupByCategoryQuery) (map[string][]domain.FavoriteItem, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}
	return storage.Group(h.stores.Get(ctx, q.VisitorID).State().Favorites), nil
}
