package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
)

// Keys of the admin session inside a visitor's key-value scope
const (
	TokenKey = "admin_token"
	UserKey  = "admin_user"
)

// LoginPath is where unauthenticated admin requests are sent
const LoginPath = "/admin/login"

var (
	ErrNoSession = errors.New("no admin session")
	ErrExpired   = errors.New("admin session expired")
)

// Store is the key-value scope the session lives in
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Manager reads and writes admin sessions
type Manager struct {
	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// Save stores token and the user profile
func (m *Manager) Save(ctx context.Context, kv Store, token string, user domain.AdminUser) error {
	if err := kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("failed to store admin token: %w", err)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode admin user: %w", err)
	}
	if err := kv.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("failed to store admin user: %w", err)
	}
	return nil
}

// Token returns the stored token. A JWT whose exp has passed is cleared and
// reported as ErrExpired; an opaque token is returned as is and only the
// backend can reject it.
func (m *Manager) Token(ctx context.Context, kv Store) (string, error) {
	token, ok, err := kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read admin token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoSession
	}

	if m.expired(token) {
		_ = m.Clear(ctx, kv)
		return "", ErrExpired
	}
	return token, nil
}

func (m *Manager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !m.now().Before(exp.Time)
}

// User returns the cached profile
func (m *Manager) User(ctx context.Context, kv Store) (*domain.AdminUser, error) {
	raw, ok, err := kv.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin user: %w", err)
	}
	if !ok {
		return nil, ErrNoSession
	}
	var user domain.AdminUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, ErrNoSession
	}
	return &user, nil
}

// Clear removes the session
func (m *Manager) Clear(ctx context.Context, kv Store) error {
	return errors.Join(kv.Delete(ctx, TokenKey), kv.Delete(ctx, UserKey))
}
