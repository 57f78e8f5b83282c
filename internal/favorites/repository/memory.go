package repository

import (
	"context"
	"sync"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// MemoryStore is an in-memory key-value store. It is the default backend in
// development and the fake used by tests. A positive quota caps the total size
// of keys plus values, mimicking the browser's storage limit.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	quota  int
	failOn map[string]error
}

// NewMemoryStore creates an empty store. quota <= 0 means unlimited.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]string),
		quota:  quota,
		failOn: make(map[string]error),
	}
}

// Get returns the value stored under key
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failOn["get"]; err != nil {
		return "", false, err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key, refusing writes that would exceed the quota
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["set"]; err != nil {
		return err
	}
	if m.quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.quota {
			return domain.ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failOn["delete"]; err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// FailOn makes every subsequent call of op ("get", "set" or "delete") return
// err. A nil err clears the failure.
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failOn, op)
		return
	}
	m.failOn[op] = err
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Compile-time check that MemoryStore implements domain.KeyValueStore
var _ domain.KeyValueStore = (*MemoryStore)(nil)
