package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/furniture-storefront/internal/catalog/client"
	"github.com/tair/furniture-storefront/internal/catalog/contact"
	"github.com/tair/furniture-storefront/internal/catalog/domain"
	"github.com/tair/furniture-storefront/internal/catalog/session"
	"github.com/tair/furniture-storefront/internal/config"
	favdomain "github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/visitor"
	"github.com/tair/furniture-storefront/pkg/httpx"
	"github.com/tair/furniture-storefront/pkg/logger"
)

const maxBodyBytes = 64 << 10

// CatalogHandler serves the public catalog pages and the admin console
type CatalogHandler struct {
	service   domain.Service
	sessions  *session.Manager
	kv        favdomain.KeyValueStore
	endpoints config.Endpoints
	metrics   *httpx.Metrics
}

// NewCatalogHandler creates a catalog handler. Admin sessions are kept in
// the visitor's scope of kv.
func NewCatalogHandler(service domain.Service, kv favdomain.KeyValueStore, endpoints config.Endpoints, reg prometheus.Registerer) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		sessions:  session.NewManager(),
		kv:        kv,
		endpoints: endpoints,
		metrics:   httpx.NewMetrics(reg, "catalog_http"),
	}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	m := h.metrics.Wrap

	// Public routes
	router.HandleFunc("/api/categories", m("/api/categories", h.ListCategories)).Methods("GET")
	router.HandleFunc("/api/products/{id}", m("/api/products/{id}", h.GetProduct)).Methods("GET")
	router.HandleFunc("/api/solutions", m("/api/solutions", h.ListSolutions)).Methods("GET")
	router.HandleFunc("/api/certifications", m("/api/certifications", h.ListCertifications)).Methods("GET")
	router.HandleFunc("/api/contact", m("/api/contact", h.SubmitContact)).Methods("POST")

	// Admin routes
	router.HandleFunc("/admin/login", m("/admin/login", h.Login)).Methods("POST")
	router.HandleFunc("/admin/logout", m("/admin/logout", h.Logout)).Methods("POST")
	router.HandleFunc("/admin/profile", m("/admin/profile", h.admin(h.Profile))).Methods("GET")
	router.HandleFunc("/admin/contact", m("/admin/contact", h.admin(h.ListContacts))).Methods("GET")
	router.HandleFunc("/admin/contact/stats", m("/admin/contact/stats", h.admin(h.ContactStats))).Methods("GET")
	router.HandleFunc("/admin/contact/unread-count", m("/admin/contact/unread-count", h.admin(h.UnreadCount))).Methods("GET")
	router.HandleFunc("/admin/contact/{id}/status", m("/admin/contact/{id}/status", h.admin(h.UpdateContactStatus))).Methods("PATCH")
	router.HandleFunc("/admin/contact/{id}", m("/admin/contact/{id}", h.admin(h.DeleteContact))).Methods("DELETE")
	router.HandleFunc("/admin/products", m("/admin/products", h.admin(h.ListAdminProducts))).Methods("GET")
	router.HandleFunc("/admin/products", m("/admin/products", h.admin(h.CreateProduct))).Methods("POST")
}

func (h *CatalogHandler) scope(r *http.Request) session.Store {
	return repository.Scoped(h.kv, visitor.FromContext(r.Context()))
}

// adminHandler is an admin endpoint called with the session token
type adminHandler func(w http.ResponseWriter, r *http.Request, token string)

// admin rejects requests without a live session before calling next
func (h *CatalogHandler) admin(next adminHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := h.sessions.Token(r.Context(), h.scope(r))
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) && !errors.Is(err, session.ErrExpired) {
				logger.Error(r.Context()).Err(err).Msg("Failed to read admin session")
			}
			respondUnauthorized(w)
			return
		}
		next(w, r, token)
	}
}

func respondUnauthorized(w http.ResponseWriter) {
	httpx.RespondJSON(w, http.StatusUnauthorized, httpx.Response{
		Success:  false,
		Error:    "Authentication required",
		Redirect: session.LoginPath,
	})
}

// respondServiceError maps a backend failure to a response. An auth failure
// ends the admin session.
func (h *CatalogHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var verr *client.ValidationError

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if cerr := h.sessions.Clear(ctx, h.scope(r)); cerr != nil {
			logger.Warn(ctx).Err(cerr).Msg("Failed to clear admin session")
		}
		respondUnauthorized(w)
	case errors.As(err, &verr):
		httpx.RespondJSON(w, http.StatusUnprocessableEntity, httpx.Response{
			Success: false,
			Error:   verr.Message,
			Errors:  verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		httpx.RespondError(w, http.StatusNotFound, "Not found")
	case client.IsUnavailable(err):
		logger.Error(ctx).Err(err).Msg("Backend unavailable")
		httpx.RespondError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		logger.Error(ctx).Err(err).Msg("Backend request failed")
		httpx.RespondError(w, http.StatusBadGateway, err.Error())
	}
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	for i := range cats {
		cats[i].Image = h.endpoints.ImageURL(cats[i].Image)
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: cats})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	product, err := h.service.Product(ctx, id)
	if err == nil && product == nil {
		err = domain.ErrNotFound
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if images, err := h.service.ProductImages(ctx, id); err != nil {
		logger.Warn(ctx).Err(err).Str("product_id", id).Msg("Failed to load product images")
	} else if len(images) > 0 {
		product.Images = images
	}
	if files, err := h.service.ProductFiles(ctx, id); err != nil {
		logger.Warn(ctx).Err(err).Str("product_id", id).Msg("Failed to load product files")
	} else if len(files) > 0 {
		product.Files = files
	}

	h.absolutize(product)
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: product})
}

func (h *CatalogHandler) absolutize(p *domain.Product) {
	p.Image = h.endpoints.ImageURL(p.Image)
	for i := range p.Images {
		p.Images[i].URL = h.endpoints.ImageURL(p.Images[i].URL)
	}
	for i := range p.Files {
		p.Files[i].URL = h.endpoints.ImageURL(p.Files[i].URL)
	}
}

// ListSolutions handles GET /api/solutions
func (h *CatalogHandler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.service.Solutions(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	for i := range solutions {
		solutions[i].Image = h.endpoints.ImageURL(solutions[i].Image)
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: solutions})
}

// ListCertifications handles GET /api/certifications
func (h *CatalogHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	certs, err := h.service.Certifications(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	for i := range certs {
		certs[i].Image = h.endpoints.ImageURL(certs[i].Image)
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: certs})
}

// SubmitContact handles POST /api/contact
func (h *CatalogHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if err := decode(r, &form); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, fieldErrs := contact.Prepare(form)
	if fieldErrs != nil {
		httpx.RespondJSON(w, http.StatusUnprocessableEntity, httpx.Response{
			Success: false,
			Error:   "Please correct the highlighted fields",
			Errors:  fieldErrs,
		})
		return
	}

	msg, err := h.service.SubmitContact(r.Context(), submission)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{
		Success: true,
		Message: "Thank you! Your message has been sent.",
		Data:    msg,
	})
}

// Login handles POST /admin/login
func (h *CatalogHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.RespondJSON(w, http.StatusUnprocessableEntity, httpx.Response{
			Success: false,
			Error:   "Email and password are required",
		})
		return
	}

	ctx := r.Context()
	res, err := h.service.Login(ctx, req.Email, req.Password)
	if errors.Is(err, client.ErrUnauthorized) {
		httpx.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if err := h.sessions.Save(ctx, h.scope(r), res.Token, res.User); err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to store admin session")
		httpx.RespondError(w, http.StatusServiceUnavailable, "Failed to start session")
		return
	}

	logger.Info(ctx).Str("admin_id", res.User.ID).Msg("Admin logged in")
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Login successful", Data: res.User})
}

// Logout handles POST /admin/logout
func (h *CatalogHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), h.scope(r)); err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Failed to clear admin session")
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Logged out", Redirect: session.LoginPath})
}

// Profile handles GET /admin/profile
func (h *CatalogHandler) Profile(w http.ResponseWriter, r *http.Request, token string) {
	user, err := h.service.Profile(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: user})
}

// ListContacts handles GET /admin/contact
func (h *CatalogHandler) ListContacts(w http.ResponseWriter, r *http.Request, token string) {
	q := r.URL.Query()
	filter := domain.ContactFilter{Status: domain.ContactStatus(q.Get("status"))}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if filter.Status != "" && !filter.Status.Valid() {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	messages, err := h.service.ListContacts(r.Context(), token, filter)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: messages})
}

// UpdateContactStatus handles PATCH /admin/contact/{id}/status
func (h *CatalogHandler) UpdateContactStatus(w http.ResponseWriter, r *http.Request, token string) {
	var req struct {
		Status domain.ContactStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	msg, err := h.service.UpdateContactStatus(r.Context(), token, mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Status updated", Data: msg})
}

// DeleteContact handles DELETE /admin/contact/{id}
func (h *CatalogHandler) DeleteContact(w http.ResponseWriter, r *http.Request, token string) {
	if err := h.service.DeleteContact(r.Context(), token, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Message: "Message deleted"})
}

// ContactStats handles GET /admin/contact/stats
func (h *CatalogHandler) ContactStats(w http.ResponseWriter, r *http.Request, token string) {
	stats, err := h.service.ContactStats(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: stats})
}

// UnreadCount handles GET /admin/contact/unread-count
func (h *CatalogHandler) UnreadCount(w http.ResponseWriter, r *http.Request, token string) {
	n, err := h.service.UnreadCount(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: map[string]int{"count": n}})
}

// ListAdminProducts handles GET /admin/products
func (h *CatalogHandler) ListAdminProducts(w http.ResponseWriter, r *http.Request, token string) {
	products, err := h.service.AdminProducts(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	for i := range products {
		h.absolutize(&products[i])
	}
	httpx.RespondJSON(w, http.StatusOK, httpx.Response{Success: true, Data: products})
}

// CreateProduct handles POST /admin/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request, token string) {
	var input domain.ProductInput
	if err := decode(r, &input); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), token, input)
	if err == nil && product == nil {
		err = client.ErrEmptyResponse
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.absolutize(product)
	httpx.RespondJSON(w, http.StatusCreated, httpx.Response{Success: true, Message: "Product created", Data: product})
}
