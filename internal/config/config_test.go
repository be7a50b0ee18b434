package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("FB_REDIS_ADDR", "localhost:6379")

	path := writeConfig(t, `
app:
  name: "family"
storage:
  backend: "Redis"
  key: "household:bookings"
redis:
  address: "${FB_REDIS_ADDR}"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "family", cfg.App.Name)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "household:bookings", cfg.Storage.Key)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "@daily", cfg.Backup.Schedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "familybooking", cfg.App.Name)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "bookings", cfg.Storage.Key)
	assert.Equal(t, "data/bookings.json", cfg.Storage.FilePath)
	assert.Equal(t, float64(10), cfg.API.RateLimit.RPS)
	assert.Equal(t, 20, cfg.API.RateLimit.Burst)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadYAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("InvalidBackend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  backend: etcd\n"))
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  Config{Storage: StorageConfig{Backend: BackendMemory, Key: "bookings"}},
		},
		{
			name:    "file without path",
			cfg:     Config{Storage: StorageConfig{Backend: BackendFile, Key: "bookings"}},
			wantErr: true,
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Storage: StorageConfig{Backend: BackendSQLite, Key: "bookings"}},
			wantErr: true,
		},
		{
			name:    "redis without address",
			cfg:     Config{Storage: StorageConfig{Backend: BackendRedis, Key: "bookings"}},
			wantErr: true,
		},
		{
			name:    "missing key",
			cfg:     Config{Storage: StorageConfig{Backend: BackendMemory}},
			wantErr: true,
		},
		{
			name: "backup without path",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendMemory, Key: "bookings"},
				Backup:  BackupConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "negative rps",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendMemory, Key: "bookings"},
				API:     APIConfig{RateLimit: APIRateLimitConfig{RPS: -1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
