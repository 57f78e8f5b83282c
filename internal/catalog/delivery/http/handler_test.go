package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/catalog/client"
	"github.com/tair/furniture-storefront/internal/catalog/domain"
	"github.com/tair/furniture-storefront/internal/catalog/session"
	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/visitor"
	"github.com/tair/furniture-storefront/pkg/httpx"
)

const testVisitor = "3b241101-e2bb-4255-8caf-4136c566a962"

// fakeBackend serves the sample catalog and accepts a single admin token
type fakeBackend struct {
	*client.StaticService
	token     string
	submitted []domain.ContactSubmission
	deleted   []string
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*domain.LoginResult, error) {
	if email != "admin@example.com" || password != "secret" {
		return nil, client.ErrUnauthorized
	}
	return &domain.LoginResult{Token: f.token, User: domain.AdminUser{ID: "1", Email: email}}, nil
}

func (f *fakeBackend) check(token string) error {
	if token != f.token {
		return client.ErrUnauthorized
	}
	return nil
}

func (f *fakeBackend) Profile(_ context.Context, token string) (*domain.AdminUser, error) {
	if err := f.check(token); err != nil {
		return nil, err
	}
	return &domain.AdminUser{ID: "1", Email: "admin@example.com"}, nil
}

func (f *fakeBackend) UnreadCount(_ context.Context, token string) (int, error) {
	return 3, f.check(token)
}

func (f *fakeBackend) DeleteContact(_ context.Context, token, id string) error {
	if err := f.check(token); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) SubmitContact(ctx context.Context, form domain.ContactSubmission) (*domain.ContactMessage, error) {
	f.submitted = append(f.submitted, form)
	return f.StaticService.SubmitContact(ctx, form)
}

type fixture struct {
	router  *mux.Router
	backend *fakeBackend
	kv      *repository.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := &fakeBackend{StaticService: client.NewStaticService(), token: "opaque-token"}
	kv := repository.NewMemoryStore(0)
	h := NewCatalogHandler(backend, kv, config.EndpointsFor(config.Development), prometheus.NewRegistry())
	return &fixture{router: newRouter(h), backend: backend, kv: kv}
}

func newRouter(h *CatalogHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(visitor.WithID(r.Context(), testVisitor)))
		})
	})
	h.RegisterRoutes(router)
	return router
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (int, httpx.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var resp httpx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestPublicCatalogAbsolutizesImages(t *testing.T) {
	f := newFixture(t)

	status, resp := f.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, status)
	first := resp.Data.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "http://localhost:3000/images/categories/office.jpg", first["image"])

	status, resp = f.do(t, http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, status)
	product := resp.Data.(map[string]interface{})
	assert.Equal(t, "Executive Desk", product["name"])
	assert.Equal(t, "http://localhost:3000/images/products/executive-desk.jpg", product["image"])
	images := product["images"].([]interface{})
	assert.Equal(t, "http://localhost:3000/images/products/executive-desk.jpg", images[0].(map[string]interface{})["url"])

	status, _ = f.do(t, http.MethodGet, "/api/products/404", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = f.do(t, http.MethodGet, "/api/solutions", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.Data, 2)
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t)

	status, resp := f.do(t, http.MethodPost, "/api/contact", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	errs := resp.Errors.(map[string]interface{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Empty(t, f.backend.submitted)

	status, resp = f.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Jane <i>Doe</i>",
		"email":   "jane@example.com",
		"message": "Please send a quote for 20 chairs.",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, resp.Success)
	require.Len(t, f.backend.submitted, 1)
	assert.Equal(t, "Jane Doe", f.backend.submitted[0].Name)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	status, resp := f.do(t, http.MethodGet, "/admin/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, session.LoginPath, resp.Redirect)
}

func TestLoginAndAdminCalls(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "admin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "admin@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, resp := f.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	status, resp = f.do(t, http.MethodGet, "/admin/contact/unread-count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, resp.Data.(map[string]interface{})["count"])

	status, _ = f.do(t, http.MethodDelete, "/admin/contact/9", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"9"}, f.backend.deleted)

	status, _ = f.do(t, http.MethodPatch, "/admin/contact/9/status", map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = f.do(t, http.MethodPost, "/admin/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, http.MethodGet, "/admin/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBackendRejectionEndsSession(t *testing.T) {
	f := newFixture(t)
	status, _ := f.do(t, http.MethodPost, "/admin/login", map[string]string{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, status)

	// The backend revokes the token.
	f.backend.token = "rotated"

	status, resp := f.do(t, http.MethodGet, "/admin/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, session.LoginPath, resp.Redirect)
	assert.Equal(t, 0, f.kv.Len())
}

func TestStaticAdminCallsAreUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scoped := repository.Scoped(f.kv, testVisitor)
	require.NoError(t, session.NewManager().Save(ctx, scoped, "opaque-token", domain.AdminUser{ID: "1"}))

	// The sample service refuses admin product listings.
	status, resp := f.do(t, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, session.LoginPath, resp.Redirect)
}

func TestBackendAnsweringWithoutDataIsHandled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":null}`))
	}))
	defer srv.Close()

	svc, err := client.NewHTTPService(srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	kv := repository.NewMemoryStore(0)
	h := NewCatalogHandler(svc, kv, config.EndpointsFor(config.Development), prometheus.NewRegistry())
	f := &fixture{router: newRouter(h), kv: kv}

	status, _ := f.do(t, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusNotFound, status)

	scoped := repository.Scoped(kv, testVisitor)
	require.NoError(t, session.NewManager().Save(context.Background(), scoped, "opaque-token", domain.AdminUser{ID: "1"}))
	status, resp := f.do(t, http.MethodPost, "/admin/products", map[string]string{"name": "Desk"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, resp.Success)
}
