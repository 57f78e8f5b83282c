package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListFavorites godoc
// @Summary List favorites
// @Description List the visitor's favorites with optional search, category filter and sort
// @Tags Favorites
// @Produce json
// @Param q query string false "Search text matched against name, category and model"
// @Param category query string false "Category filter"
// @Param sort query string false "Sort field (addedAt, name, category)"
// @Param order query string false "Sort order (asc, desc)"
// @Success 200 {object} object{success=bool,data=object{favorites=array,count=int,total=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/favorites [get]
func (h *FavoritesHandler) ListFavoritesDoc() {}

// AddFavorite godoc
// @Summary Add a favorite
// @Description Save a product snapshot as a favorite
// @Tags Favorites
// @Accept json
// @Produce json
// @Param request body object{id=string,name=string,image=string,category=string,model=string} true "Product"
// @Success 201 {object} object{success=bool,message=string,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /api/favorites [post]
func (h *FavoritesHandler) AddFavoriteDoc() {}

// RemoveFavorite godoc
// @Summary Remove a favorite
// @Tags Favorites
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object{success=bool,message=string,data=array}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /api/favorites/{id} [delete]
func (h *FavoritesHandler) RemoveFavoriteDoc() {}

// ClearFavorites godoc
// @Summary Clear all favorites
// @Tags Favorites
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /api/favorites [delete]
func (h *FavoritesHandler) ClearFavoritesDoc() {}

// ToggleFavorite godoc
// @Summary Toggle a favorite
// @Description Add the product when it is not a favorite, remove it otherwise
// @Tags Favorites
// @Accept json
// @Produce json
// @Param request body object{product=object,variant=string} true "Product and button variant"
// @Success 200 {object} object{success=bool,message=string,data=object{result=object,wasFavorite=bool,button=object}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/favorites/toggle [post]
func (h *FavoritesHandler) ToggleFavoriteDoc() {}

// GetButton godoc
// @Summary Favorite button state
// @Tags Favorites
// @Produce json
// @Param id path string true "Product ID"
// @Param variant query string false "icon, button or text"
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/favorites/{id}/button [get]
func (h *FavoritesHandler) GetButtonDoc() {}

// GetCounter godoc
// @Summary Favorites counter
// @Tags Favorites
// @Produce json
// @Param dropdown query bool false "Include the most recent favorites"
// @Success 200 {object} object{success=bool,data=object{count=int,recent=array}}
// @Router /api/favorites/counter [get]
func (h *FavoritesHandler) GetCounterDoc() {}

// StreamEvents godoc
// @Summary Favorites update stream
// @Description Server-sent favoritesUpdated events for the visitor
// @Tags Favorites
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/favorites/events [get]
func (h *FavoritesHandler) StreamEventsDoc() {}

// GetStats godoc
// @Summary Favorites statistics
// @Tags Favorites
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/favorites/stats [get]
func (h *FavoritesHandler) GetStatsDoc() {}

// GetRecent godoc
// @Summary Recently added favorites
// @Tags Favorites
// @Produce json
// @Param limit query int false "Limit (default 5)"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/favorites/recent [get]
func (h *FavoritesHandler) GetRecentDoc() {}

// GetCategories godoc
// @Summary Favorites grouped by category
// @Tags Favorites
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/favorites/categories [get]
func (h *FavoritesHandler) GetCategoriesDoc() {}

// ShareFavorites godoc
// @Summary Share link for the favorites
// @Tags Favorites
// @Produce json
// @Success 200 {object} object{success=bool,data=object{title=string,text=string,url=string}}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/favorites/share [get]
func (h *FavoritesHandler) ShareFavoritesDoc() {}

// ExportFavorites godoc
// @Summary Export favorites
// @Description Download the favorites as a JSON export document
// @Tags Favorites
// @Produce json
// @Success 200 {object} object{favorites=array,exportedAt=string,count=int,version=string}
// @Router /api/favorites/export [get]
func (h *FavoritesHandler) ExportFavoritesDoc() {}

// ImportFavorites godoc
// @Summary Import favorites
// @Description Replace the favorites with the ones in an export document
// @Tags Favorites
// @Accept json
// @Produce json
// @Param request body object{favorites=array} true "Export document"
// @Success 200 {object} object{success=bool,message=string,data=object{count=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/favorites/import [post]
func (h *FavoritesHandler) ImportFavoritesDoc() {}

// GetPopular godoc
// @Summary Most favorited products
// @Description Products ranked by how many visitors currently hold them as favorites
// @Tags Favorites
// @Produce json
// @Param limit query int false "Limit (default 10)"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/favorites/popular [get]
func (h *FavoritesHandler) GetPopularDoc() {}
