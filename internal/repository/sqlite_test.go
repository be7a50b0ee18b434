package repository

import (
	"context"
	"path/filepath"
	"testing"

	"familybooking/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBlobStore(t *testing.T) {
	logger := zerolog.Nop()
	repo, err := NewSQLiteBlobStore(":memory:", &logger)
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "bookings")
		assert.ErrorIs(t, err, domain.ErrBlobNotFound)
	})

	t.Run("Upsert", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1]`)))
		require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1,2]`)))

		got, err := repo.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(got))

		var count int
		require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestSQLiteBlobStore_FileAndErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bookings.db")
	repo, err := NewSQLiteBlobStore(dbPath, nil)
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[]`)))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteBlobStore(dbPath, nil)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	require.NoError(t, reopened.Close())

	t.Run("ClosedDB", func(t *testing.T) {
		_, err := reopened.Get(ctx, "bookings")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrBlobNotFound)
		assert.Error(t, reopened.Set(ctx, "bookings", []byte(`[]`)))
	})
}
