package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tair/furniture-storefront/internal/visitor"
	"github.com/tair/furniture-storefront/pkg/httpx"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// EventName is the SSE event type of favorites updates
const EventName = "favoritesUpdated"

// HeartbeatInterval keeps idle event streams open through proxies
var HeartbeatInterval = 25 * time.Second

// StreamEvents handles GET /api/favorites/events. Every mutation of the
// visitor's favorites is sent as a favoritesUpdated event until the client
// goes away.
func (h *FavoritesHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	ctx := r.Context()
	visitorID := visitor.FromContext(ctx)
	events, unsubscribe := h.stores.Get(ctx, visitorID).Subscribe(16)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.Debug(ctx).Str("visitor_id", visitorID).Msg("Favorites event stream opened")

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx).Str("visitor_id", visitorID).Msg("Favorites event stream closed")
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				logger.Warn(ctx).Err(err).Msg("Failed to encode favorites event")
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, EventName, data)
			flusher.Flush()
		}
	}
}
