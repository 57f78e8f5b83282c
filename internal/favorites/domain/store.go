package domain

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExceeded is returned by key-value stores that refuse a write for size
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore is the string key-value space the favorites live in, the
// server-side counterpart of browser local storage. Get reports ok=false for a
// missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Clock abstracts time retrieval so timestamps are deterministic in tests
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
