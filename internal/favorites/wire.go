//go:build wireinject
// +build wireinject

package favorites

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/furniture-storefront/internal/favorites/delivery/http"
	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/store"
	"github.com/tair/furniture-storefront/internal/favorites/usecase/command"
	"github.com/tair/furniture-storefront/internal/favorites/usecase/query"
)

// Command Handlers Providers
func ProvideAddFavoriteHandler(stores store.Provider) *command.AddFavoriteHandler {
	return command.NewAddFavoriteHandler(stores)
}

func ProvideRemoveFavoriteHandler(stores store.Provider) *command.RemoveFavoriteHandler {
	return command.NewRemoveFavoriteHandler(stores)
}

func ProvideClearFavoritesHandler(stores store.Provider) *command.ClearFavoritesHandler {
	return command.NewClearFavoritesHandler(stores)
}

func ProvideToggleFavoriteHandler(stores store.Provider) *command.ToggleFavoriteHandler {
	return command.NewToggleFavoriteHandler(stores)
}

func ProvideImportFavoritesHandler(stores store.Provider) *command.ImportFavoritesHandler {
	return command.NewImportFavoritesHandler(stores)
}

// Query Handlers Providers
func ProvideSearchFavoritesHandler(stores store.Provider) *query.SearchFavoritesHandler {
	return query.NewSearchFavoritesHandler(stores)
}

func ProvideGetStatsHandler(stores store.Provider, clock domain.Clock) *query.GetStatsHandler {
	return query.NewGetStatsHandler(stores, clock)
}

func ProvideRecentFavoritesHandler(stores store.Provider) *query.RecentFavoritesHandler {
	return query.NewRecentFavoritesHandler(stores)
}

func ProvideGroupByCategoryHandler(stores store.Provider) *query.GroupByCategoryHandler {
	return query.NewGroupByCategoryHandler(stores)
}

func ProvideExportFavoritesHandler(stores store.Provider) *query.ExportFavoritesHandler {
	return query.NewExportFavoritesHandler(stores)
}

func ProvideShareFavoritesHandler(stores store.Provider, frontendURL string) *query.ShareFavoritesHandler {
	return query.NewShareFavoritesHandler(stores, frontendURL)
}

// Wire sets
var CommandHandlerSet = wire.NewSet(
	ProvideAddFavoriteHandler,
	ProvideRemoveFavoriteHandler,
	ProvideClearFavoritesHandler,
	ProvideToggleFavoriteHandler,
	ProvideImportFavoritesHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideSearchFavoritesHandler,
	ProvideGetStatsHandler,
	ProvideRecentFavoritesHandler,
	ProvideGroupByCategoryHandler,
	ProvideExportFavoritesHandler,
	ProvideShareFavoritesHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	stores store.Provider,
	clock domain.Clock,
	frontendURL string,
	popular http.PopularityReader,
	reg prometheus.Registerer,
) (*http.FavoritesHandler, error) {
	wire.Build(
		CommandHandlerSet,
		QueryHandlerSet,
		http.NewFavoritesHandlerWithDI,
	)
	return nil, nil
}
