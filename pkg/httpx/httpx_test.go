package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWrapCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test_http")

	h := m.Wrap("/things", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			RespondError(w, http.StatusBadRequest, "bad")
			return
		}
		RespondJSON(w, http.StatusOK, Response{Success: true})
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things", nil))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things?fail=1", nil))

	assert.Equal(t, 2.0, promtest.ToFloat64(m.requestCounter.WithLabelValues("GET", "/things", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.requestCounter.WithLabelValues("GET", "/things", "400")))
}

func TestStatusRecorderFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &StatusRecorder{ResponseWriter: rec, Status: http.StatusOK}

	var _ http.Flusher = sr
	sr.Flush()
	assert.True(t, rec.Flushed)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestTimeoutMiddlewareSkipsEventStreams(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	h := TimeoutMiddleware(10 * time.Millisecond)(slow)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := mux.NewRouter()
	healthy := true
	RegisterHealthCheck(router, "storefront", map[string]Check{
		"storage": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("unreachable")
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}

func TestHealthCheckReportsDetails(t *testing.T) {
	router := mux.NewRouter()
	state := "closed"
	RegisterHealthCheck(router, "storefront", map[string]Check{
		"catalog": func(context.Context) error {
			if state == "open" {
				return errors.New("circuit breaker is open")
			}
			return nil
		},
	}, WithDetail("catalog_breaker", func() interface{} {
		return map[string]interface{}{"state": state}
	}))

	for _, want := range []struct {
		state  string
		status int
	}{{"closed", http.StatusOK}, {"open", http.StatusServiceUnavailable}} {
		state = want.state
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, want.status, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, want.state, data["catalog_breaker"].(map[string]interface{})["state"])
	}
}

type countingLimiter struct {
	max   int
	seen  map[string]int
	err   error
	reset time.Time
}

func (l *countingLimiter) Limit() int { return l.max }

func (l *countingLimiter) Allow(_ context.Context, id string) (bool, int, time.Time, error) {
	if l.err != nil {
		return false, 0, time.Time{}, l.err
	}
	l.seen[id]++
	return l.seen[id] <= l.max, max(l.max-l.seen[id], 0), l.reset, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := &countingLimiter{max: 2, seen: map[string]int{}, reset: time.Now().Add(time.Minute)}
	identify := func(r *http.Request) string { return r.Header.Get("X-Visitor") }
	h := RateLimitMiddleware(limiter, identify, "/api/contact")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	post := func(path, visitor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Visitor", visitor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, post("/api/contact", "a").Code)
	rec := post("/api/contact", "a")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = post("/api/contact", "a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other visitors and other paths are unaffected
	assert.Equal(t, http.StatusCreated, post("/api/contact", "b").Code)
	assert.Equal(t, http.StatusCreated, post("/api/favorites", "a").Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	limiter := &countingLimiter{max: 0, err: errors.New("redis down")}
	h := RateLimitMiddleware(limiter, func(*http.Request) string { return "a" }, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientAddrIgnoresClientChosenIdentity(t *testing.T) {
	limiter := &countingLimiter{max: 1, seen: map[string]int{}}
	h := RateLimitMiddleware(limiter, ClientAddr, "/admin/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", 40000+i)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.AddCookie(&http.Cookie{Name: "visitor_id", Value: fmt.Sprintf("visitor-%d", i)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientAddrWithoutPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "addr:unix-socket", ClientAddr(req))
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "addr:2001:db8::1", ClientAddr(req))
}
