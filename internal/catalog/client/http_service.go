package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
)

const maxResponseBytes = 4 << 20

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// NewHTTPClient returns a traced client with the given timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// HTTPService implements domain.Service against the backend REST API.
type HTTPService struct {
	base    *url.URL
	client  HTTPClient
	breaker *CircuitBreaker
}

// NewHTTPService constructs a service rooted at baseURL. A nil client falls
// back to http.DefaultClient and a nil breaker disables circuit breaking.
func NewHTTPService(baseURL string, client HTTPClient, breaker *CircuitBreaker) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client, breaker: breaker}, nil
}

func (s *HTTPService) Categories(ctx context.Context) ([]domain.Category, error) {
	return call[[]domain.Category](ctx, s, http.MethodGet, "/categories", nil, "")
}

func (s *HTTPService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return callOne[domain.Product](ctx, s, http.MethodGet, join("/products", id), nil, "")
}

func (s *HTTPService) ProductImages(ctx context.Context, id string) ([]domain.ProductImage, error) {
	return call[[]domain.ProductImage](ctx, s, http.MethodGet, join("/products", id, "images"), nil, "")
}

func (s *HTTPService) ProductFiles(ctx context.Context, id string) ([]domain.ProductFile, error) {
	return call[[]domain.ProductFile](ctx, s, http.MethodGet, join("/products", id, "files"), nil, "")
}

func (s *HTTPService) Solutions(ctx context.Context) ([]domain.Solution, error) {
	return call[[]domain.Solution](ctx, s, http.MethodGet, "/solutions", nil, "")
}

func (s *HTTPService) Certifications(ctx context.Context) ([]domain.Certification, error) {
	return call[[]domain.Certification](ctx, s, http.MethodGet, "/certifications", nil, "")
}

func (s *HTTPService) SubmitContact(ctx context.Context, form domain.ContactSubmission) (*domain.ContactMessage, error) {
	return callOne[domain.ContactMessage](ctx, s, http.MethodPost, "/contact", form, "")
}

// Login exchanges admin credentials for a bearer token
func (s *HTTPService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	return callOne[domain.LoginResult](ctx, s, http.MethodPost, "/auth/login", body, "")
}

func (s *HTTPService) Profile(ctx context.Context, token string) (*domain.AdminUser, error) {
	return callOne[domain.AdminUser](ctx, s, http.MethodGet, "/auth/profile", nil, token)
}

func (s *HTTPService) ListContacts(ctx context.Context, token string, filter domain.ContactFilter) ([]domain.ContactMessage, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	endpoint := "/contact"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return call[[]domain.ContactMessage](ctx, s, http.MethodGet, endpoint, nil, token)
}

func (s *HTTPService) UpdateContactStatus(ctx context.Context, token, id string, status domain.ContactStatus) (*domain.ContactMessage, error) {
	body := map[string]domain.ContactStatus{"status": status}
	return callOne[domain.ContactMessage](ctx, s, http.MethodPatch, join("/contact", id, "status"), body, token)
}

func (s *HTTPService) DeleteContact(ctx context.Context, token, id string) error {
	_, err := call[json.RawMessage](ctx, s, http.MethodDelete, join("/contact", id), nil, token)
	return err
}

func (s *HTTPService) ContactStats(ctx context.Context, token string) (*domain.ContactStats, error) {
	return callOne[domain.ContactStats](ctx, s, http.MethodGet, "/contact/stats/overview", nil, token)
}

func (s *HTTPService) UnreadCount(ctx context.Context, token string) (int, error) {
	out, err := call[struct {
		Count int `json:"count"`
	}](ctx, s, http.MethodGet, "/contact/unread-count", nil, token)
	return out.Count, err
}

func (s *HTTPService) AdminProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return call[[]domain.Product](ctx, s, http.MethodGet, "/admin/products", nil, token)
}

func (s *HTTPService) CreateProduct(ctx context.Context, token string, input domain.ProductInput) (*domain.Product, error) {
	return callOne[domain.Product](ctx, s, http.MethodPost, "/admin/products", input, token)
}

// callOne is call for endpoints answering with a single object. A success
// envelope without data becomes ErrNotFound for reads and ErrEmptyResponse
// otherwise, so callers never receive a nil object.
func callOne[T any](ctx context.Context, s *HTTPService, method, endpoint string, payload any, token string) (*T, error) {
	out, err := call[*T](ctx, s, method, endpoint, payload, token)
	if err != nil {
		return nil, err
	}
	if out == nil {
		if method == http.MethodGet {
			return nil, domain.ErrNotFound
		}
		return nil, ErrEmptyResponse
	}
	return out, nil
}

// call performs one request and decodes the data of the response envelope
func call[T any](ctx context.Context, s *HTTPService, method, endpoint string, payload any, token string) (T, error) {
	var out T

	req, err := s.newRequest(ctx, method, endpoint, payload, token)
	if err != nil {
		return out, err
	}

	var body []byte
	var status int
	do := func() error {
		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("catalog: request failed: %w", err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("catalog: read response: %w", err)
		}
		if status >= http.StatusInternalServerError {
			return errorFromResponse(status, body)
		}
		return nil
	}

	if s.breaker != nil {
		err = s.breaker.Call(do, IsUnavailable)
	} else {
		err = do()
	}
	if err != nil {
		return out, err
	}

	if status < 200 || status > 299 {
		return out, errorFromResponse(status, body)
	}

	var envelope domain.APIResponse[T]
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			return out, fmt.Errorf("catalog: decode %s %s: %w", method, endpoint, err)
		}
		if !envelope.Success {
			return out, &APIError{Status: status, Message: envelope.Message}
		}
	}
	return envelope.Data, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("catalog: encode payload: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return s.base.String()
	}
	return s.base.ResolveReference(ref).String()
}

func join(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			escaped = append(escaped, p)
			continue
		}
		escaped = append(escaped, url.PathEscape(strings.TrimSpace(p)))
	}
	return path.Join(escaped...)
}

func errorFromResponse(status int, body []byte) error {
	var envelope domain.APIResponse[json.RawMessage]
	_ = json.Unmarshal(body, &envelope)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnprocessableEntity:
		return &ValidationError{Message: envelope.Message, Fields: envelope.Errors}
	}

	msg := envelope.Message
	if msg == "" && len(body) > 0 && envelope.Data == nil {
		msg = strings.TrimSpace(string(body))
	}
	return &APIError{Status: status, Message: msg}
}
