package command

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// AddFavoriteCommand represents the command to save a product for a visitor
type AddFavoriteCommand struct {
	VisitorID string
	Product   domain.Product
}

// AddFavoriteHandler handles add favorite command
type AddFavoriteHandler struct {
	stores store.Provider
}

// NewAddFavoriteHandler creates a new add favorite handler
func NewAddFavoriteHandler(stores store.Provider) *AddFavoriteHandler {
	return &AddFavoriteHandler{stores: stores}
}

// Handle executes the add favorite command. Invalid or duplicate products are
// reported through the result, not the error.
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) (domain.Result, error) {
	if cmd.VisitorID == "" {
		return domain.Result{}, domain.ErrMissingVisitorID
	}
	return h.stores.Get(ctx, cmd.VisitorID).Add(ctx, cmd.Product), nil
}
