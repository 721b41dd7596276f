package offline_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/offline"
)

func openStore(t *testing.T) (*offline.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "offline-audio.db")
	s, err := offline.OpenStore(path)
	require.NoError(t, err)

	return s, path
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, path := openStore(t)

	blob, meta, err := s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, blob)
	assert.Nil(t, meta)

	downloadedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "42", []byte("abc"), offline.Meta{
		ContentType:  "audio/mpeg",
		Size:         3,
		SourceURL:    "https://cdn.example/42.mp3",
		DownloadedAt: downloadedAt,
	}))
	require.NoError(t, s.Put(ctx, "7", []byte("de"), offline.Meta{Size: 2})) //nolint:exhaustruct

	ok, err := s.Has(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Close())

	s, err = offline.OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	blob, meta, err = s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), blob)
	assert.Equal(t, "audio/mpeg", meta.ContentType)
	assert.True(t, downloadedAt.Equal(meta.DownloadedAt))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "42", entries[0].Key)
	assert.Equal(t, "7", entries[1].Key)
	assert.Equal(t, int64(2), entries[1].Size)

	require.NoError(t, s.Delete(ctx, "42"))
	require.NoError(t, s.Delete(ctx, "42"))
	ok, err = s.Has(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosedStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := openStore(t)
	require.NoError(t, s.Close())

	_, err := s.Has(ctx, "1")
	require.Error(t, err)

	_, _, err = s.Get(ctx, "1")
	require.Error(t, err)

	require.Error(t, s.Put(ctx, "1", []byte("x"), offline.Meta{})) //nolint:exhaustruct
	require.Error(t, s.Delete(ctx, "1"))

	_, err = s.List(ctx)
	require.ErrorIs(t, err, offline.ErrStoreClosed)
}

func TestStoreSharedPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, path := openStore(t)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	b, err := offline.OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })

	require.NoError(t, a.Put(ctx, "1", []byte("abc"), offline.Meta{Size: 3})) //nolint:exhaustruct
	require.NoError(t, b.Put(ctx, "2", []byte{}, offline.Meta{}))             //nolint:exhaustruct

	ok, err := b.Has(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	blob, meta, err := a.Get(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.NotNil(t, blob)
	assert.Empty(t, blob)

	entries, err := a.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
