package httpx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// Limiter decides whether identifier may make another request
type Limiter interface {
	Allow(ctx context.Context, identifier string) (allowed bool, remaining int, reset time.Time, err error)
	Limit() int
}

// RedisLimiter is a sliding-window limiter kept in a Redis sorted set per
// identifier, so every replica shares the same counts
type RedisLimiter struct {
	redis       redis.Cmdable
	prefix      string
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRedisLimiter allows maxRequests per window for each identifier
func NewRedisLimiter(client redis.Cmdable, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		redis:       client,
		prefix:      prefix,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RedisLimiter) Limit() int { return rl.maxRequests }

func (rl *RedisLimiter) Allow(ctx context.Context, identifier string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("%s:ratelimit:%s", rl.prefix, identifier)
	now := rl.now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(countCmd.Val())
	remaining := max(rl.maxRequests-count-1, 0)
	return count < rl.maxRequests, remaining, now.Add(rl.window), nil
}

// ClientAddr identifies the caller by the connection's remote host. Cookies
// and forwarding headers are chosen by the client, so they never pick the
// bucket.
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}

// RateLimitMiddleware throttles the given POST paths. identify picks the
// caller's bucket. Limiter errors let the request through.
func RateLimitMiddleware(limiter Limiter, identify func(*http.Request) string, paths ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(paths))
	for _, p := range paths {
		limited[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !limited[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			identifier := identify(r)
			allowed, remaining, reset, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				logger.Error(r.Context()).
					Err(err).
					Str("identifier", identifier).
					Msg("Rate limiter error")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				logger.Warn(r.Context()).
					Str("identifier", identifier).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(reset).Round(time.Second).Seconds())))
				RespondError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
