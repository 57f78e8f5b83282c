package storage

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Adapter translates between a visitor's favorites and the single envelope
// kept in their key-value space. Expected failures never surface as errors:
// reads degrade to an empty collection and writes report false.
type Adapter struct {
	kv         domain.KeyValueStore
	key        string
	clock      domain.Clock
	migrations map[string]Migration
}

// Option configures an Adapter
type Option func(*Adapter)

// WithKey overrides the storage key (default domain.StorageKey)
func WithKey(key string) Option {
	return func(a *Adapter) { a.key = key }
}

// WithClock sets the clock used for addedAt, lastUpdated and exportedAt
func WithClock(c domain.Clock) Option {
	return func(a *Adapter) { a.clock = c }
}

// WithMigrations registers schema upgrade steps, keyed by their From version
func WithMigrations(ms ...Migration) Option {
	return func(a *Adapter) {
		for _, m := range ms {
			a.migrations[m.From] = m
		}
	}
}

// NewAdapter creates an adapter over kv
func NewAdapter(kv domain.KeyValueStore, opts ...Option) *Adapter {
	a := &Adapter{
		kv:         kv,
		key:        domain.StorageKey,
		clock:      domain.RealClock{},
		migrations: make(map[string]Migration),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// storedEnvelope defers decoding of products until the version is checked
type storedEnvelope struct {
	Products json.RawMessage `json:"products"`
	Version  string          `json:"version"`
}

// Read returns the stored favorites, or an empty collection when nothing
// usable is stored. An envelope of another version is migrated when a chain
// of registered steps reaches the current version, otherwise it is deleted.
func (a *Adapter) Read(ctx context.Context) []domain.FavoriteItem {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Msg("Failed to read favorites")
		return []domain.FavoriteItem{}
	}
	if !ok || raw == "" {
		return []domain.FavoriteItem{}
	}

	var env storedEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Msg("Discarding unparsable favorites")
		return []domain.FavoriteItem{}
	}

	if env.Version != domain.CurrentVersion {
		return a.upgrade(ctx, env)
	}

	items, err := decodeItems(env.Products)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Msg("Discarding unparsable favorites")
		return []domain.FavoriteItem{}
	}
	return items
}

func (a *Adapter) upgrade(ctx context.Context, env storedEnvelope) []domain.FavoriteItem {
	products, err := a.migrate(env.Version, env.Products)
	if err == nil {
		var items []domain.FavoriteItem
		if items, err = decodeItems(products); err == nil {
			if a.Write(ctx, items) {
				logger.Info(ctx).
					Str("from", env.Version).
					Str("to", domain.CurrentVersion).
					Int("count", len(items)).
					Msg("Migrated favorites")
			}
			return items
		}
	}

	logger.Warn(ctx).Err(err).
		Str("version", env.Version).
		Str("expected", domain.CurrentVersion).
		Msg("Discarding favorites of unsupported version")
	if err := a.kv.Delete(ctx, a.key); err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Msg("Failed to delete stale favorites")
	}
	return []domain.FavoriteItem{}
}

func decodeItems(raw json.RawMessage) ([]domain.FavoriteItem, error) {
	items := []domain.FavoriteItem{}
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Write replaces the stored envelope with items. It reports false when the
// envelope cannot be serialized or the store refuses it.
func (a *Adapter) Write(ctx context.Context, items []domain.FavoriteItem) bool {
	if items == nil {
		items = []domain.FavoriteItem{}
	}
	env := domain.Envelope{
		Products:    items,
		LastUpdated: a.clock.Now().UTC(),
		Version:     domain.CurrentVersion,
		Count:       len(items),
	}

	data, err := json.Marshal(env)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to serialize favorites")
		return false
	}
	if err := a.kv.Set(ctx, a.key, string(data)); err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Int("bytes", len(data)).Msg("Failed to save favorites")
		return false
	}
	return true
}

// Add saves p as the newest favorite. Invalid and duplicate products leave
// the collection untouched.
func (a *Adapter) Add(ctx context.Context, p domain.Product) domain.Result {
	current := a.Read(ctx)

	if err := p.Validate(); err != nil {
		return domain.Result{Success: false, Message: err.Error(), Favorites: current}
	}
	if indexOf(current, p.ID) >= 0 {
		return domain.Result{Success: false, Message: domain.MsgAlreadyExists, Favorites: current}
	}

	updated := make([]domain.FavoriteItem, 0, len(current)+1)
	updated = append(updated, domain.NewFavoriteItem(p, a.clock.Now()))
	updated = append(updated, current...)

	if !a.Write(ctx, updated) {
		return domain.Result{Success: false, Message: domain.MsgSaveFailed, Favorites: current}
	}
	return domain.Result{Success: true, Message: domain.MsgAdded, Favorites: updated}
}

// Remove drops the favorite with id. Removing an unknown id succeeds.
func (a *Adapter) Remove(ctx context.Context, id domain.ProductID) domain.Result {
	current := a.Read(ctx)

	updated := make([]domain.FavoriteItem, 0, len(current))
	for _, item := range current {
		if item.ID != id {
			updated = append(updated, item)
		}
	}

	if !a.Write(ctx, updated) {
		return domain.Result{Success: false, Message: domain.MsgSaveFailed, Favorites: current}
	}
	return domain.Result{Success: true, Message: domain.MsgRemoved, Favorites: updated}
}

// Contains reports whether id is a favorite
func (a *Adapter) Contains(ctx context.Context, id domain.ProductID) bool {
	return indexOf(a.Read(ctx), id) >= 0
}

// Count returns the number of favorites
func (a *Adapter) Count(ctx context.Context) int {
	return len(a.Read(ctx))
}

// Clear deletes the stored envelope
func (a *Adapter) Clear(ctx context.Context) bool {
	if err := a.kv.Delete(ctx, a.key); err != nil {
		logger.Warn(ctx).Err(err).Str("key", a.key).Msg("Failed to clear favorites")
		return false
	}
	return true
}

// Recent returns up to limit favorites, newest addedAt first
func (a *Adapter) Recent(ctx context.Context, limit int) []domain.FavoriteItem {
	return SortRecent(a.Read(ctx), limit)
}

// Search returns the favorites whose name, category or model contains query,
// ignoring case
func (a *Adapter) Search(ctx context.Context, query string) []domain.FavoriteItem {
	return Filter(a.Read(ctx), query)
}

// GroupByCategory partitions the favorites by category
func (a *Adapter) GroupByCategory(ctx context.Context) map[string][]domain.FavoriteItem {
	return Group(a.Read(ctx))
}

// Export snapshots the favorites for download or sharing
func (a *Adapter) Export(ctx context.Context) domain.Export {
	items := a.Read(ctx)
	return domain.Export{
		Favorites:  items,
		ExportedAt: a.clock.Now().UTC(),
		Count:      len(items),
		Version:    domain.CurrentVersion,
	}
}

// Import replaces the stored favorites with the ones in an export document.
// The document must carry a favorites array; entries without an id and
// repeated ids are dropped.
func (a *Adapter) Import(ctx context.Context, raw []byte) domain.ImportResult {
	items, err := ParseImport(raw)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Rejected favorites import")
		return domain.ImportResult{Success: false, Message: domain.MsgInvalidImport}
	}

	if !a.Write(ctx, items) {
		return domain.ImportResult{Success: false, Message: domain.MsgImportFailed}
	}
	return domain.ImportResult{Success: true, Message: domain.MsgImported, Count: len(items)}
}

func indexOf(items []domain.FavoriteItem, id domain.ProductID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
