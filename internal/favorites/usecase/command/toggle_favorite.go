package command

import (
	"context"
	"strings"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// ToggleFavoriteCommand represents a favorite button activation
type ToggleFavoriteCommand struct {
	VisitorID string
	Product   domain.Product
}

// ToggleResult carries the mutation result and the membership before the toggle
type ToggleResult struct {
	Result      domain.Result `json:"result"`
	WasFavorite bool          `json:"wasFavorite"`
	IsFavorite  bool          `json:"isFavorite"`
}

// ToggleFavoriteHandler handles toggle favorite command
type ToggleFavoriteHandler struct {
	stores store.Provider
}

// NewToggleFavoriteHandler creates a new toggle favorite handler
func NewToggleFavoriteHandler(stores store.Provider) *ToggleFavoriteHandler {
	return &ToggleFavoriteHandler{stores: stores}
}

// Handle executes the toggle favorite command
func (h *ToggleFavoriteHandler) Handle(ctx context.Context, cmd ToggleFavoriteCommand) (*ToggleResult, error) {
	if cmd.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}
	if strings.TrimSpace(string(cmd.Product.ID)) == "" {
		return nil, domain.ErrMissingProductID
	}

	// Removal only needs the id; the rest of the product is checked when
	// the toggle turns out to be an add.
	s := h.stores.Get(ctx, cmd.VisitorID)
	res, was := s.Toggle(ctx, cmd.Product)
	if !was && !res.Success {
		if err := cmd.Product.Validate(); err != nil {
			return nil, err
		}
	}
	return &ToggleResult{
		Result:      res,
		WasFavorite: was,
		IsFavorite:  s.IsFavorite(cmd.Product.ID),
	}, nil
}
