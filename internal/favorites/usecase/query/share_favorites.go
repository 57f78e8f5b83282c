package query

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
)

// ShareFavoritesQuery represents the query building a share link
type ShareFavoritesQuery struct {
	VisitorID string
}

// ShareLink is what the storefront hands to the browser's share sheet
type ShareLink struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// ShareFavoritesHandler handles share favorites query
type ShareFavoritesHandler struct {
	stores      store.Provider
	frontendURL string
}

// NewShareFavoritesHandler creates a new share favorites handler linking to frontendURL
func NewShareFavoritesHandler(stores store.Provider, frontendURL string) *ShareFavoritesHandler {
	return &ShareFavoritesHandler{stores: stores, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Handle executes the share favorites query
func (h *ShareFavoritesHandler) Handle(ctx context.Context, q ShareFavoritesQuery) (*ShareLink, error) {
	if q.VisitorID == "" {
		return nil, domain.ErrMissingVisitorID
	}

	items := h.stores.Get(ctx, q.VisitorID).State().Favorites
	if len(items) == 0 {
		return nil, domain.ErrNothingToShare
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID.String())
	}

	text := fmt.Sprintf("Check out my %d favorite furniture items", len(items))
	if len(items) == 1 {
		text = "Check out my favorite furniture item: " + items[0].Name
	}

	return &ShareLink{
		Title: "My Favorite Furniture",
		Text:  text,
		URL:   h.frontendURL + "/favorites?ids=" + url.QueryEscape(strings.Join(ids, ",")),
	}, nil
}
