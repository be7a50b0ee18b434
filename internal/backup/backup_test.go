package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"familybooking/internal/config"
	"familybooking/internal/models"
	"familybooking/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticReader []models.Booking

func (r staticReader) List(context.Context) []models.Booking {
	return append([]models.Booking(nil), r...)
}

func newService(t *testing.T, cfg config.BackupConfig, bookings ...models.Booking) *BackupService {
	t.Helper()
	logger := zerolog.Nop()
	s := NewBackupService(staticReader(bookings), cfg, &logger)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC) }
	return s
}

func TestBackupService(t *testing.T) {
	storagePath := filepath.Join(t.TempDir(), "backups")
	booking := models.Booking{ID: "b1", Date: "2024-05-01", Location: "Airport", FamilyMember: "2", PickupTime: "09:00", DropoffTime: "09:30"}
	s := newService(t, config.BackupConfig{Enabled: true, StoragePath: storagePath, RetentionDays: 1}, booking)

	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(context.Background())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(storagePath, "backup_20240501_030000.json"), path)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		restored, err := repository.DecodeBookings(raw)
		require.NoError(t, err)
		assert.Equal(t, []models.Booking{booking}, restored)

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, "backup_20240101_000000.json")
		require.NoError(t, os.WriteFile(oldFile, []byte("[]"), 0o644))
		unrelated := filepath.Join(storagePath, "notes.txt")
		require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

		oldTime := s.now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))
		require.NoError(t, os.Chtimes(unrelated, oldTime, oldTime))

		assert.Equal(t, 1, s.CleanupOldBackups())

		_, err := os.Stat(oldFile)
		assert.True(t, os.IsNotExist(err))
		assert.FileExists(t, unrelated)
		assert.FileExists(t, filepath.Join(storagePath, "backup_20240501_030000.json"))
	})
}

func TestBackupEmptyCollection(t *testing.T) {
	storagePath := t.TempDir()
	s := newService(t, config.BackupConfig{Enabled: true, StoragePath: storagePath})

	path, err := s.PerformBackup(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestCleanupDisabledRetention(t *testing.T) {
	s := newService(t, config.BackupConfig{Enabled: true, StoragePath: t.TempDir()})
	assert.Equal(t, 0, s.CleanupOldBackups())
}

func TestBackupService_Disabled(t *testing.T) {
	s := newService(t, config.BackupConfig{Enabled: false})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Start(ctx))
}

func TestBackupService_InvalidSchedule(t *testing.T) {
	s := newService(t, config.BackupConfig{Enabled: true, Schedule: "not a schedule", StoragePath: t.TempDir()})
	assert.Error(t, s.Start(context.Background()))
}

func TestBackupService_StartRunsInitialBackup(t *testing.T) {
	storagePath := t.TempDir()
	s := newService(t, config.BackupConfig{Enabled: true, Schedule: "@daily", StoragePath: storagePath})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Start(ctx))

	assert.FileExists(t, filepath.Join(storagePath, "backup_20240501_030000.json"))
}
