package domain

import (
	"context"

	"familybooking/internal/models"
)

// BlobStore is a durable key-value store holding opaque values.
// Get returns ErrBlobNotFound when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// BookingStorage loads and saves the whole booking collection.
type BookingStorage interface {
	Load(ctx context.Context) ([]models.Booking, error)
	Save(ctx context.Context, bookings []models.Booking) error
}

type BookingReader interface {
	List(ctx context.Context) []models.Booking
}

type BookingService interface {
	BookingReader
	Get(ctx context.Context, id string) (models.Booking, error)
	ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error)
	Create(ctx context.Context, data models.BookingFormData) (models.Booking, error)
	Update(ctx context.Context, id string, data models.BookingFormData) (models.Booking, error)
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
