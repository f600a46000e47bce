package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFilesystemStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "pdfs/u-1/doc-1.pdf", strings.NewReader("%PDF-1.7 content"), "application/pdf")
	require.NoError(t, err)

	rc, err := store.Get(ctx, "pdfs/u-1/doc-1.pdf")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 content", string(data))
}

func TestFilesystemStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "pdfs/doc.pdf", strings.NewReader("v1"), "application/pdf"))
	require.NoError(t, store.Put(ctx, "pdfs/doc.pdf", strings.NewReader("v2"), "application/pdf"))

	rc, err := store.Get(ctx, "pdfs/doc.pdf")
	require.NoError(t, err)
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	assert.Equal(t, "v2", string(data))
}

func TestFilesystemStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "pdfs/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStore_Exists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "pdfs/doc.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, "pdfs/doc.pdf", strings.NewReader("x"), "application/pdf"))

	exists, err = store.Exists(ctx, "pdfs/doc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFilesystemStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "pdfs/doc.pdf", strings.NewReader("x"), "application/pdf"))
	require.NoError(t, store.Delete(ctx, "pdfs/doc.pdf"))

	exists, err := store.Exists(ctx, "pdfs/doc.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error
	assert.NoError(t, store.Delete(ctx, "pdfs/doc.pdf"))
}

func TestFilesystemStore_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "../outside.pdf", strings.NewReader("x"), "application/pdf")
	assert.Error(t, err)

	_, err = store.Get(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestFilesystemStore_HealthCheck(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestNewBlobStore(t *testing.T) {
	t.Run("filesystem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FilesystemRoot = t.TempDir()
		store, err := NewBlobStore(cfg)
		require.NoError(t, err)
		assert.IsType(t, &FilesystemStore{}, store)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewBlobStore(Config{Type: "tape"})
		assert.Error(t, err)
	})
}
