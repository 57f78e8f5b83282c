package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/furniture-storefront/pkg/database"
)

// fakeRedis answers the string commands RedisStore issues from a map
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, NewRedisStore(newFakeRedis(), "storefront"))
}

func TestRedisStoreNamespacesKeysWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()

	require.NoError(t, NewRedisStore(rdb, "storefront").Set(ctx, "visitor:a:furniture_favorites", "[]"))
	assert.Equal(t, "[]", rdb.data["storefront:visitor:a:furniture_favorites"])
	assert.Zero(t, rdb.ttls["storefront:visitor:a:furniture_favorites"])

	require.NoError(t, NewRedisStore(rdb, "").Set(ctx, "bare", "1"))
	assert.Equal(t, "1", rdb.data["bare"])
}

func TestRedisStoreWrapsErrors(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	s := NewRedisStore(rdb, "storefront")

	_, ok, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, rdb.err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), rdb.err)
	assert.ErrorIs(t, s.Delete(ctx, "k"), rdb.err)
}

// newGormTestDB runs GORM's postgres dialect over an embedded SQLite file.
// Both accept $N placeholders and ON CONFLICT upserts.
func newGormTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "gorm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE favorites_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME
	)`)
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, NewGormStore(newGormTestDB(t)))
}

func TestGormStoreUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	db := newGormTestDB(t)
	s := NewGormStore(db)

	require.NoError(t, s.Set(ctx, "visitor:a:furniture_favorites", "v1"))
	require.NoError(t, s.Set(ctx, "visitor:a:furniture_favorites", "v2"))
	require.NoError(t, s.Set(ctx, "visitor:b:furniture_favorites", "other"))

	var rows []KVEntry
	require.NoError(t, db.Order("key").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "v2", rows[0].Value)
	assert.False(t, rows[0].UpdatedAt.IsZero())
	assert.Equal(t, "other", rows[1].Value)
}

func TestGormStoreReportsDatabaseErrors(t *testing.T) {
	ctx := context.Background()
	db := newGormTestDB(t)
	require.NoError(t, db.Exec("DROP TABLE favorites_kv").Error)
	s := NewGormStore(db)

	// A broken table is an error, not a missing key.
	_, ok, err := s.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, s.Set(ctx, "k", "v"))
}
