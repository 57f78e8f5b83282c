package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
)

func memoryOpener(kv *repository.MemoryStore) opener {
	return func(context.Context, string) (*repository.Backend, error) {
		return &repository.Backend{Store: kv, Close: func() error { return nil }}, nil
	}
}

func run(t *testing.T, kv *repository.MemoryStore, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(memoryOpener(kv))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const exportDoc = `{
  "favorites": [
    {"id": "1", "name": "Executive Desk", "category": "Desks", "addedAt": "2026-01-02T10:00:00Z"},
    {"id": "2", "name": "Ergonomic Chair", "category": "Chairs", "addedAt": "2026-01-01T10:00:00Z"}
  ],
  "version": "1.0"
}`

func TestImportListExportClear(t *testing.T) {
	kv := repository.NewMemoryStore(0)

	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte(exportDoc), 0o600))

	out, err := run(t, kv, "import", path, "--visitor", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgImported)
	assert.Contains(t, out, "(2)")

	out, err = run(t, kv, "list", "--visitor", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Executive Desk")
	assert.Contains(t, out, "Ergonomic Chair")
	assert.Contains(t, out, "2 favorite(s)")

	out, err = run(t, kv, "list", "--visitor", "alice", "--category", "chairs")
	require.NoError(t, err)
	assert.NotContains(t, out, "Executive Desk")
	assert.Contains(t, out, "1 favorite(s)")

	out, err = run(t, kv, "list", "--visitor", "alice", "-q", "desk")
	require.NoError(t, err)
	assert.Contains(t, out, "Executive Desk")
	assert.NotContains(t, out, "Ergonomic Chair")

	out, err = run(t, kv, "list", "--visitor", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites.")

	out, err = run(t, kv, "export", "--visitor", "alice")
	require.NoError(t, err)
	var export domain.Export
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.Equal(t, 2, export.Count)
	assert.Equal(t, domain.CurrentVersion, export.Version)

	_, err = run(t, kv, "clear", "--visitor", "alice")
	require.Error(t, err)

	out, err = run(t, kv, "clear", "--visitor", "alice", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 favorite(s)")
	assert.Equal(t, 0, kv.Len())
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	kv := repository.NewMemoryStore(0)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"favorites": "nope"}`), 0o600))

	_, err := run(t, kv, "import", path, "--visitor", "alice")
	require.Error(t, err)
	assert.Equal(t, domain.MsgInvalidImport, err.Error())
}

func TestVisitorIsRequired(t *testing.T) {
	_, err := run(t, repository.NewMemoryStore(0), "list")
	require.Error(t, err)
}
