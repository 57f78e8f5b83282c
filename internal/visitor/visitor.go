package visitor

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// CookieName is the cookie identifying a visitor's key-value space
const CookieName = "visitor_id"

const cookieMaxAge = 365 * 24 * time.Hour

type contextKey struct{}

// WithID returns a copy of ctx carrying visitor id
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the visitor id set by Middleware, or ""
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware makes sure every request carries a visitor id. Requests without
// a valid visitor_id cookie get a new random one, which is also set on the
// response. secure marks the cookie HTTPS-only.
func Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug(r.Context()).Str("visitor_id", id).Msg("Assigned new visitor id")
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
