package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"familybooking/internal/domain"
	"familybooking/internal/models"
)

// SnapshotStore persists the whole booking collection as one JSON array
// under a single key.
type SnapshotStore struct {
	blobs domain.BlobStore
	key   string
}

func NewSnapshotStore(blobs domain.BlobStore, key string) *SnapshotStore {
	if key == "" {
		key = models.DefaultStorageKey
	}
	return &SnapshotStore{blobs: blobs, key: key}
}

func (s *SnapshotStore) Key() string {
	return s.key
}

// Load returns nil bookings and no error when the key was never written.
func (s *SnapshotStore) Load(ctx context.Context) ([]models.Booking, error) {
	raw, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeBookings(raw)
}

func (s *SnapshotStore) Save(ctx context.Context, bookings []models.Booking) error {
	raw, err := EncodeBookings(bookings)
	if err != nil {
		return err
	}
	return s.blobs.Set(ctx, s.key, raw)
}

// EncodeBookings serializes the collection; nil encodes as "[]".
func EncodeBookings(bookings []models.Booking) ([]byte, error) {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	raw, err := json.Marshal(bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookings: %w", err)
	}
	return raw, nil
}

func DecodeBookings(raw []byte) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookings: %w", err)
	}
	return bookings, nil
}
