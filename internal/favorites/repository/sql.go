package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
)

// Dialect holds the statements a SQLStore runs against its database
type Dialect struct {
	Name   string
	Schema string
	Get    string
	Upsert string
	Delete string
}

// PostgresDialect targets PostgreSQL through lib/pq
var PostgresDialect = Dialect{
	Name: "postgres",
	Schema: `
		CREATE TABLE IF NOT EXISTS favorites_kv (
			key        VARCHAR(255) PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	Get: `SELECT value FROM favorites_kv WHERE key = $1`,
	Upsert: `
		INSERT INTO favorites_kv (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	Delete: `DELETE FROM favorites_kv WHERE key = $1`,
}

// SQLiteDialect targets SQLite through modernc.org/sqlite
var SQLiteDialect = Dialect{
	Name: "sqlite",
	Schema: `
		CREATE TABLE IF NOT EXISTS favorites_kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	Get: `SELECT value FROM favorites_kv WHERE key = ?`,
	Upsert: `
		INSERT INTO favorites_kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	Delete: `DELETE FROM favorites_kv WHERE key = ?`,
}

// SQLStore keeps values in a favorites_kv table using database/sql
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a store over db using the given dialect
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// EnsureSchema creates the favorites_kv table if needed
func (r *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Schema); err != nil {
		return fmt.Errorf("failed to create %s schema: %w", r.dialect.Name, err)
	}
	return nil
}

func (r *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.dialect.Get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLStore) Set(ctx context.Context, key, value string) error {
	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, r.dialect.Upsert, key, value, updatedAt); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (r *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Delete, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var _ domain.KeyValueStore = (*SQLStore)(nil)
