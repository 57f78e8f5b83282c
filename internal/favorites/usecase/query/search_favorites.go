package query

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// Sort fields and orders accepted by SearchFavoritesQuery
const (
	SortByAddedAt  = "addedAt"
	SortByName     = "name"
	SortByCategory = "category"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var ErrInvalidSort = errors.New("sort must be addedAt, name or category and order asc or desc")

// SearchFavoritesQuery represents the favorites page filters
type SearchFavoritesQuery struct {
	VisitorID string
	Query     string // Optional: blank means no text filter
	Category  string // Optional: exact category, case-insensitive
	SortBy    string // Default addedAt
	Order     string // Default desc
}

// SearchFavoritesHandler handles search favorites query
type SearchFavoritesHandler struct {
	stores store.Provider
}

// NewSearchFavoritesHandler creates a new search favorites handler
func NewSearchFavoritesHandler(stores store.Provider) *SearchFavoritesHandler {
	return &SearchFavoritesHandler{stores: stores}
}

// Handle executes the search favorites query
func (h *SearchFavoritesHandler) Handle(ctx context.Context, q SearchFavoritesQuery) ([]domain.FavoriteItem, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}

	// Set defaults
	if q.SortBy == "" {
		q.SortBy = SortByAddedAt
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	cmp, err := comparator(q.SortBy, q.Order)
	if err != nil {
		return nil, err
	}

	items := h.stores.Get(ctx, q.VisitorID).State().Favorites
	if strings.TrimSpace(q.Query) != "" {
		items = storage.Filter(items, strings.TrimSpace(q.Query))
	}
	if q.Category != "" {
		items = slices.DeleteFunc(items, func(item domain.FavoriteItem) bool {
			return !strings.EqualFold(item.CategoryOrUnknown(), q.Category)
		})
	}

	slices.SortStableFunc(items, cmp)
	return items, nil
}

func comparator(sortBy, order string) (func(a, b domain.FavoriteItem) int, error) {
	var cmp func(a, b domain.FavoriteItem) int
	switch sortBy {
	case SortByAddedAt:
		cmp = func(a, b domain.FavoriteItem) int { return a.AddedAt.Compare(b.AddedAt) }
	case SortByName:
		cmp = func(a, b domain.FavoriteItem) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByCategory:
		cmp = func(a, b domain.FavoriteItem) int {
			return strings.Compare(strings.ToLower(a.CategoryOrUnknown()), strings.ToLower(b.CategoryOrUnknown()))
		}
	default:
		return nil, ErrInvalidSort
	}

	switch order {
	case OrderAsc:
		return cmp, nil
	case OrderDesc:
		return func(a, b domain.FavoriteItem) int { return cmp(b, a) }, nil
	default:
		return nil, ErrInvalidSort
	}
}
