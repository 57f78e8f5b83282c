package command

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// ClearFavoritesCommand represents the command to delete all of a visitor's favorites
type ClearFavoritesCommand struct {
	VisitorID string
}

// ClearFavoritesHandler handles clear favorites command
type ClearFavoritesHandler struct {
	stores store.Provider
}

// NewClearFavoritesHandler creates a new clear favorites handler
func NewClearFavoritesHandler(stores store.Provider) *ClearFavoritesHandler {
	return &ClearFavoritesHandler{stores: stores}
}

// Handle executes the clear favorites command
func (h *ClearFavoritesHandler) Handle(ctx context.Context, cmd ClearFavoritesCommand) (domain.Result, error) {
	if cmd.VisitorID == "" {
		return domain.Result{}, domain.ErrMissingVisitorID
	}
	return h.stores.Get(ctx, cmd.VisitorID).Clear(ctx), nil
}
