// Package backup periodically snapshots the booking collection to
// timestamped JSON files and prunes old ones.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"familybooking/internal/config"
	"familybooking/internal/domain"
	"familybooking/internal/metrics"
	"familybooking/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	filePrefix      = "backup_"
	fileSuffix      = ".json"
	timestampLayout = "20060102_150405"
)

type BackupService struct {
	reader domain.BookingReader
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(reader domain.BookingReader, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BackupService{
		reader: reader,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start takes one backup immediately, then runs on the configured cron
// schedule until ctx is done. It returns at once when backups are disabled.
func (s *BackupService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.config.Schedule, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(s.config.Schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule backups: %w", err)
	}

	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Backup service started")

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info().Msg("Backup service stopped")
	return nil
}

func (s *BackupService) run(ctx context.Context) {
	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled backup failed")
	}
	s.CleanupOldBackups()
}

// PerformBackup writes the current collection to a new file and returns
// its path.
func (s *BackupService) PerformBackup(ctx context.Context) (path string, err error) {
	defer func() { metrics.ObserveBackup(err) }()

	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	bookings := s.reader.List(ctx)
	raw, err := repository.EncodeBookings(bookings)
	if err != nil {
		return "", err
	}

	name := filePrefix + s.now().Format(timestampLayout) + fileSuffix
	path = filepath.Join(s.config.StoragePath, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize backup: %w", err)
	}

	s.logger.Info().Str("path", path).Int("bookings", len(bookings)).Msg("Backup completed successfully")
	return path, nil
}

// CleanupOldBackups removes backup files older than the retention window
// and returns how many were removed. Other files are left alone.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", name).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.StoragePath, name)); err != nil {
				s.logger.Warn().Err(err).Str("file", name).Msg("Failed to delete old backup")
				continue
			}
			removed++
		}
	}
	return removed
}
