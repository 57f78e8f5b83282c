package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/popularity"
	"github.com/tair/furniture-storefront/internal/favorites/store"
	"github.com/tair/furniture-storefront/internal/favorites/usecase/command"
	"github.com/tair/furniture-storefront/internal/favorites/usecase/query"
	"github.com/tair/furniture-storefront/internal/visitor"
	"github.com/tair/furniture-storefront/pkg/httpx"
	"github.com/tair/furniture-storefront/pkg/logger"
)

const maxImportBytes = 1 << 20

// PopularityReader serves the most favorited products
type PopularityReader interface {
	Top(n int) []popularity.Entry
}

// FavoritesHandler handles HTTP requests for favorites using CQRS pattern
type FavoritesHandler struct {
	// Command handlers
	addHandler    *command.AddFavoriteHandler
	removeHandler *command.RemoveFavoriteHandler
	clearHandler  *command.ClearFavoritesHandler
	toggleHandler *command.ToggleFavoriteHandler
	importHandler *command.ImportFavoritesHandler

	// Query handlers
	searchHandler *query.SearchFavoritesHandler
	statsHandler  *query.GetStatsHandler
	recentHandler *query.RecentFavoritesHandler
	groupHandler  *query.GroupByCategoryHandler
	exportHandler *query.ExportFavoritesHandler
	shareHandler  *query.ShareFavoritesHandler

	stores     store.Provider
	popularity PopularityReader
	metrics    *httpx.Metrics
	mutations  *prometheus.CounterVec
}

// NewFavoritesHandler creates the handler with every use case wired to stores
func NewFavoritesHandler(stores store.Provider, clock domain.Clock, frontendURL string, popular PopularityReader, reg prometheus.Registerer) *FavoritesHandler {
	return NewFavoritesHandlerWithDI(
		command.NewAddFavoriteHandler(stores),
		command.NewRemoveFavoriteHandler(stores),
		command.NewClearFavoritesHandler(stores),
		command.NewToggleFavoriteHandler(stores),
		command.NewImportFavoritesHandler(stores),
		query.NewSearchFavoritesHandler(stores),
		query.NewGetStatsHandler(stores, clock),
		query.NewRecentFavoritesHandler(stores),
		query.NewGroupByCategoryHandler(stores),
		query.NewExportFavoritesHandler(stores),
		query.NewShareFavoritesHandler(stores, frontendURL),
		stores,
		popular,
		reg,
	)
}

// NewFavoritesHandlerWithDI creates a new favorites handler using dependency injection
// This is used by Wire for automatic dependency injection
func NewFavoritesHandlerWithDI(
	addHandler *command.AddFavoriteHandler,
	removeHandler *command.RemoveFavoriteHandler,
	clearHandler *command.ClearFavoritesHandler,
	toggleHandler *command.ToggleFavoriteHandler,
	importHandler *command.ImportFavoritesHandler,
	searchHandler *query.SearchFavoritesHandler,
	statsHandler *query.GetStatsHandler,
	recentHandler *query.RecentFavoritesHandler,
	groupHandler *query.GroupByCategoryHandler,
	exportHandler *query.ExportFavoritesHandler,
	shareHandler *query.ShareFavoritesHandler,
	stores store.Provider,
	popular PopularityReader,
	reg prometheus.Registerer,
) *FavoritesHandler {
	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_mutations_total",
			Help: "Favorites mutations by action and outcome",
		},
		[]string{"action", "success"},
	)
	reg.MustRegister(mutations)

	return &FavoritesHandler{
		addHandler:    addHandler,
		removeHandler: removeHandler,
		clearHandler:  clearHandler,
		toggleHandler: toggleHandler,
		importHandler: importHandler,
		searchHandler: searchHandler,
		statsHandler:  statsHandler,
		recentHandler: recentHandler,
		groupHandler:  groupHandler,
		exportHandler: exportHandler,
		shareHandler:  shareHandler,
		stores:        stores,
		popularity:    popular,
		metrics:       httpx.NewMetrics(reg, "favorites_http"),
		mutations:     mutations,
	}
}

func (h *FavoritesHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics.Wrap

	router.HandleFunc("/api/favorites", m("/api/favorites", h.ListFavorites)).Methods("GET")
	router.HandleFunc("/api/favorites", m("/api/favorites", h.AddFavorite)).Methods("POST")
	router.HandleFunc("/api/favorites", m("/api/favorites", h.ClearFavorites)).Methods("DELETE")
	router.HandleFunc("/api/favorites/toggle", m("/api/favorites/toggle", h.ToggleFavorite)).Methods("POST")
	router.HandleFunc("/api/favorites/counter", m("/api/favorites/counter", h.GetCounter)).Methods("GET")
	router.HandleFunc("/api/favorites/events", h.StreamEvents).Methods("GET")
	router.HandleFunc("/api/favorites/stats", m("/api/favorites/stats", h.GetStats)).Methods("GET")
	router.HandleFunc("/api/favorites/recent", m("/api/favorites/recent", h.GetRecent)).Methods("GET")
	router.HandleFunc("/api/favorites/categories", m("/api/favorites/categories", h.GetCategories)).Methods("GET")
	router.HandleFunc("/api/favorites/share", m("/api/favorites/share", h.ShareFavorites)).Methods("GET")
	router.HandleFunc("/api/favorites/export", m("/api/favorites/export", h.ExportFavorites)).Methods("GET")
	router.HandleFunc("/api/favorites/import", m("/api/favorites/import", h.ImportFavorites)).Methods("POST")
	router.HandleFunc("/api/favorites/popular", m("/api/favorites/popular", h.GetPopular)).Methods("GET")
	router.HandleFunc("/api/favorites/{id}/button", m("/api/favorites/{id}/button", h.GetButton)).Methods("GET")
	router.HandleFunc("/api/favorites/{id}", m("/api/favorites/{id}", h.RemoveFavorite)).Methods("DELETE")
}

func (h *FavoritesHandler) recordMutation(action string, success bool) {
	h.mutations.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

// resultStatus maps an unsuccessful mutation result to an HTTP status
func resultStatus(res domain.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Message == domain.MsgAlreadyExists:
		return http.StatusConflict
	case res.Message == domain.MsgSaveFailed, res.Message == domain.MsgClearFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func respondResult(w http.ResponseWriter, successStatus int, res domain.Result) {
	status := resultStatus(res)
	if res.Success {
		status = successStatus
	}
	resp := httpx.Response{Success: res.Success, Data: res.Favorites}
	if res.Success {
		resp.Message = res.Message
	} else {
		resp.Error = res.Message
	}
	httpx.RespondJSON(w, status, resp)
}

func decodeProduct(r *http.Request) (domain.Product, error) {
	var p domain.Product
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImportBytes)).Decode(&p); err != nil {
		return p, err
	}
	return p, nil
}

// ListFavorites handles GET /api/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.searchHandler.Handle(r.Context(), query.SearchFavoritesQuery{
		VisitorID: visitor.FromContext(r.Context()),
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sort"),
		Order:     q.Get("order"),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data: map[string]interface{}{
			"favorites": items,
			"count":     len(items),
			"total":     h.stores.Get(r.Context(), visitor.FromContext(r.Context())).Count(),
		},
	})
}

// AddFavorite handles POST /api/favorites
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.addHandler.Handle(r.Context(), command.AddFavoriteCommand{
		VisitorID: visitor.FromContext(r.Context()),
		Product:   p,
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recordMutation("add", res.Success)
	respondResult(w, http.StatusCreated, res)
}

// RemoveFavorite handles DELETE /api/favorites/{id}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	res, err := h.removeHandler.Handle(r.Context(), command.RemoveFavoriteCommand{
		VisitorID: visitor.FromContext(r.Context()),
		ProductID: domain.ProductID(mux.Vars(r)["id"]),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recordMutation("remove", res.Success)
	respondResult(w, http.StatusOK, res)
}

// ClearFavorites handles DELETE /api/favorites
func (h *FavoritesHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	res, err := h.clearHandler.Handle(r.Context(), command.ClearFavoritesCommand{
		VisitorID: visitor.FromContext(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recordMutation("clear", res.Success)
	respondResult(w, http.StatusOK, res)
}

// ToggleFavorite handles POST /api/favorites/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product domain.Product `json:"product"`
		Variant string         `json:"variant"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImportBytes)).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	visitorID := visitor.FromContext(ctx)
	out, err := h.toggleHandler.Handle(ctx, command.ToggleFavoriteCommand{
		VisitorID: visitorID,
		Product:   req.Product,
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	action := "add"
	if out.WasFavorite {
		action = "remove"
	}
	h.recordMutation(action, out.Result.Success)

	loading := h.stores.Get(ctx, visitorID).State().Loading
	status := http.StatusOK
	if !out.Result.Success {
		status = resultStatus(out.Result)
	}
	httpx.RespondJSON(w, status, httpx.Response{
		Success: out.Result.Success,
		Message: out.Result.Message,
		Data: map[string]interface{}{
			"result":      out.Result,
			"wasFavorite": out.WasFavorite,
			"button":      NewButtonView(req.Product.ID, req.Variant, out.IsFavorite, loading),
		},
	})
}

// GetButton handles GET /api/favorites/{id}/button
func (h *FavoritesHandler) GetButton(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ProductID(mux.Vars(r)["id"])
	state := h.stores.Get(ctx, visitor.FromContext(ctx)).State()

	isFavorite := false
	for _, item := range state.Favorites {
		if item.ID == id {
			isFavorite = true
			break
		}
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{
		Success: true,
		Data:    NewButtonView(id, r.URL.Query().Get("variant"), isFavorite, state.Loading),
	})
}

// GetCounter handles GET /api/favorites/counter
func (h *FavoritesHandler) GetCounter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID := visitor.FromContext(ctx)
	view := CounterView{Count: h.stores.Get(ctx, visitorID).Count()}

	if dropdown, _ := strconv.ParseBool(r.URL.Query().Get("dropdown")); dropdown {
		recent, err := h.recentHandler.Handle(ctx, query.RecentFavoritesQuery{VisitorID: visitorID})
		if err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to load recent favorites")
		}
		view.Recent = recent
	}

	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: view})
}

// GetStats handles GET /api/favorites/stats
func (h *FavoritesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{
		VisitorID: visitor.FromContext(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: stats})
}

// GetRecent handles GET /api/favorites/recent
func (h *FavoritesHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.recentHandler.Handle(r.Context(), query.RecentFavoritesQuery{
		VisitorID: visitor.FromContext(r.Context()),
		Limit:     limit,
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: items})
}

// GetCategories handles GET /api/favorites/categories
func (h *FavoritesHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupHandler.Handle(r.Context(), query.GroupByCategoryQuery{
		VisitorID: visitor.FromContext(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: groups})
}

// ShareFavorites handles GET /api/favorites/share
func (h *FavoritesHandler) ShareFavorites(w http.ResponseWriter, r *http.Request) {
	link, err := h.shareHandler.Handle(r.Context(), query.ShareFavoritesQuery{
		VisitorID: visitor.FromContext(r.Context()),
	})
	if errors.Is(err, domain.ErrNothingToShare) {
		httpx.RespondError(w, http.StatusNotFound, "No favorites to share")
		return
	}
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: link})
}

// ExportFavorites handles GET /api/favorites/export. The body is the export
// document itself so the downloaded file can be imported again.
func (h *FavoritesHandler) ExportFavorites(w http.ResponseWriter, r *http.Request) {
	out, err := h.exportHandler.Handle(r.Context(), query.ExportFavoritesQuery{
		VisitorID: visitor.FromContext(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	httpx.RespondJSON(w, http.StatusOK, out.Export)
}

// ImportFavorites handles POST /api/favorites/import
func (h *FavoritesHandler) ImportFavorites(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		httpx.RespondError(w, http.StatusRequestEntityTooLarge, "Import file too large")
		return
	}

	res, err := h.importHandler.Handle(r.Context(), command.ImportFavoritesCommand{
		VisitorID: visitor.FromContext(r.Context()),
		Data:      data,
	})
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recordMutation("import", res.Success)

	status := http.StatusOK
	switch {
	case res.Success:
	case res.Message == domain.MsgInvalidImport:
		status = http.StatusBadRequest
	default:
		status = http.StatusServiceUnavailable
	}
	resp := httpx.Response{Success: res.Success, Data: map[string]int{"count": res.Count}}
	if res.Success {
		resp.Message = res.Message
	} else {
		resp.Error = res.Message
	}
	httpx.RespondJSON(w, status, resp)
}

// GetPopular handles GET /api/favorites/popular
func (h *FavoritesHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}

	entries := []popularity.Entry{}
	if h.popularity != nil {
		entries = h.popularity.Top(limit)
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: entries})
}
