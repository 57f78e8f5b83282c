package command

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// RemoveFavoriteCommand represents the command to drop one favorite
type RemoveFavoriteCommand struct {
	VisitorID string
	ProductID domain.ProductID
}

// RemoveFavoriteHandler handles remove favorite command
type RemoveFavoriteHandler struct {
	stores store.Provider
}

// NewRemoveFavoriteHandler creates a new remove favorite handler
func NewRemoveFavoriteHandler(stores store.Provider) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{stores: stores}
}

// Handle executes the remove favorite command
func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) (domain.Result, error) {
	if cmd.VisitorID == "" {
		return domain.Result{}, domain.ErrMissingVisitorID
	}
	if cmd.ProductID == "" {
		return domain.Result{}, domain.ErrMissingProductID
	}
	return h.stores.Get(ctx, cmd.VisitorID).Remove(ctx, cmd.ProductID), nil
}
