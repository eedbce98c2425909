package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "nested/dir/doc.json", []byte(`{"k": "v"}`)))

	raw, err := os.ReadFile(filepath.Join(tmpDir, "nested", "dir", "doc.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"k": "v"}`, string(raw))

	// No temporary files survive a commit.
	entries, err := os.ReadDir(filepath.Join(tmpDir, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStore_Mappable(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.json", []byte("[1, 2, 3]")))

	b, err := store.Open(ctx, "a.json")
	require.NoError(t, err)

	m, ok := b.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", string(data))

	require.NoError(t, b.Close())
	_, err = m.Bytes()
	assert.Error(t, err, "bytes after close")
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "a", []byte("1")), context.Canceled)
	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
