package visitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(req *http.Request) (string, *httptest.ResponseRecorder) {
	var seen string
	h := Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddlewareAssignsVisitor(t *testing.T) {
	id, rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestMiddlewareKeepsExistingVisitor(t *testing.T) {
	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: existing})

	id, rec := serve(req)
	assert.Equal(t, existing, id)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddlewareReplacesForgedVisitor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "../../admin"})

	id, rec := serve(req)
	assert.NotEqual(t, "../../admin", id)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestFromContextWithoutVisitor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromContext(req.Context()))
	assert.Equal(t, "v1", FromContext(WithID(req.Context(), "v1")))
}
