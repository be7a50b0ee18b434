package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"familybooking/internal/domain"
)

const (
	tmpSuffix       = ".tmp"
	backupSuffix    = ".bak"
	filePermissions = 0o600
)

// FileBlobStore stores each key as a file. When path ends in ".json" and
// the key matches baseKey, the value is written to path itself; any other
// key goes to a sibling file named after the escaped key.
type FileBlobStore struct {
	path    string
	baseKey string
	mu      sync.Mutex
}

func NewFileBlobStore(path, baseKey string) (*FileBlobStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBlobStore{path: path, baseKey: baseKey}, nil
}

func (r *FileBlobStore) fileFor(key string) string {
	if key == r.baseKey {
		return r.path
	}
	return filepath.Join(filepath.Dir(r.path), url.PathEscape(key)+".json")
}

func (r *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.fileFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set keeps the previous value as <file>.bak, writes to <file>.tmp and
// renames it into place.
func (r *FileBlobStore) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.fileFor(key)
	tmp := target + tmpSuffix
	if err := os.WriteFile(tmp, value, filePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if _, err := os.Stat(target); err == nil {
		if err := copyFile(target, target+backupSuffix); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to back up %s: %w", target, err)
		}
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

func (r *FileBlobStore) Close() error {
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, filePermissions)
}
