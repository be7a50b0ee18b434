package repository

import (
	"context"
	"sync"

	"familybooking/internal/domain"
)

// MemoryBlobStore keeps values in process memory. Used for tests, the
// "memory" backend and as the Redis fallback.
type MemoryBlobStore struct {
	values sync.Map
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{}
}

func (r *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := r.values.Load(key)
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return append([]byte(nil), val.([]byte)...), nil
}

func (r *MemoryBlobStore) Set(ctx context.Context, key string, value []byte) error {
	r.values.Store(key, append([]byte(nil), value...))
	return nil
}

func (r *MemoryBlobStore) Close() error {
	return nil
}
