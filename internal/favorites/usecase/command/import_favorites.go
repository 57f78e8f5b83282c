package command

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// ImportFavoritesCommand represents an uploaded export document
type ImportFavoritesCommand struct {
	VisitorID string
	Data      []byte
}

// ImportFavoritesHandler handles import favorites command
type ImportFavoritesHandler struct {
	stores store.Provider
}

// NewImportFavoritesHandler creates a new import favorites handler
func NewImportFavoritesHandler(stores store.Provider) *ImportFavoritesHandler {
	return &ImportFavoritesHandler{stores: stores}
}

// Handle executes the import favorites command
func (h *ImportFavoritesHandler) Handle(ctx context.Context, cmd ImportFavoritesCommand) (domain.ImportResult, error) {
	if cmd.VisitorID == "" {
		return domain.ImportResult{}, domain.ErrMissingVisitorID
	}
	return h.stores.Get(ctx, cmd.VisitorID).Import(ctx, cmd.Data), nil
}
