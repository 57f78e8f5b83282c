package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// ExportFavoritesQuery represents the query producing a download of a visitor's favorites
type ExportFavoritesQuery struct {
	VisitorID string
}

// ExportResult is the export document and the name it is offered under
type ExportResult struct {
	Export   domain.Export
	Filename string
}

// ExportFavoritesHandler handles export favorites query
type ExportFavoritesHandler struct {
	stores store.Provider
}

// NewExportFavoritesHandler creates a new export favorites handler
func NewExportFavoritesHandler(stores store.Provider) *ExportFavoritesHandler {
	return &ExportFavoritesHandler{stores: stores}
}

// Handle executes the export favorites query
func (h *ExportFavoritesHandler) Handle(ctx context.Context, q ExportFavoritesQuery) (*ExportResult, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}

	export := h.stores.Get(ctx, q.VisitorID).Export(ctx)
	return &ExportResult{
		Export:   export,
		Filename: "favorites-" + export.ExportedAt.Format("2006-01-02") + ".json",
	}, nil
}
