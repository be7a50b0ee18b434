package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"familybooking/internal/domain"
	"familybooking/internal/events"
	"familybooking/internal/family"
	"familybooking/internal/metrics"
	"familybooking/internal/models"
	"familybooking/internal/timeslot"
	"familybooking/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// BookingStore owns the booking collection and mirrors every change to
// durable storage. A failed save leaves the collection as it was.
type BookingStore struct {
	storage  domain.BookingStorage
	registry *family.Registry
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	mu       sync.RWMutex
	bookings []models.Booking

	now   func() time.Time
	newID func() string
}

// NewBookingStore loads the persisted collection. A missing value starts
// empty; an unreadable one is logged and also starts empty.
func NewBookingStore(
	ctx context.Context,
	storage domain.BookingStorage,
	registry *family.Registry,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *BookingStore {
	if registry == nil {
		registry = family.Default()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &BookingStore{
		storage:  storage,
		registry: registry,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	s.bookings = s.load(ctx)
	metrics.SetBookings(len(s.bookings))
	return s
}

func (s *BookingStore) load(ctx context.Context) []models.Booking {
	loaded, err := s.storage.Load(ctx)
	if err != nil {
		perr := &domain.PersistenceError{Op: domain.OpLoad, Err: err}
		s.logger.Warn().Err(perr).Msg("stored bookings unreadable, starting with an empty collection")
		return []models.Booking{}
	}

	seen := make(map[string]struct{}, len(loaded))
	out := make([]models.Booking, 0, len(loaded))
	for _, b := range loaded {
		if b.ID == "" {
			s.logger.Warn().Str("date", b.Date).Msg("dropping stored booking without id")
			continue
		}
		if _, dup := seen[b.ID]; dup {
			s.logger.Warn().Str("booking_id", b.ID).Msg("dropping stored booking with duplicate id")
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}

	s.logger.Info().Int("count", len(out)).Msg("bookings loaded")
	return out
}

// List returns a copy of the collection in insertion order.
func (s *BookingStore) List(ctx context.Context) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking{}, s.bookings...)
}

func (s *BookingStore) Get(ctx context.Context, id string) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.bookings[i], nil
	}
	return models.Booking{}, domain.NotFound(id)
}

// ListByDateRange returns bookings whose date lies in [from, to], sorted by
// start. Either bound may be empty.
func (s *BookingStore) ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	if err := checkBound("from", from); err != nil {
		return nil, err
	}
	if err := checkBound("to", to); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if (from == "" || b.Date >= from) && (to == "" || b.Date <= to) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	models.SortByStart(out)
	return out, nil
}

func checkBound(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := timeslot.ParseDate(value); err != nil {
		return &domain.ValidationError{Field: field, Message: "Date must be a valid date (YYYY-MM-DD)"}
	}
	return nil
}

func (s *BookingStore) Create(ctx context.Context, data models.BookingFormData) (created models.Booking, err error) {
	defer func() { metrics.ObserveOperation(opCreate, err) }()

	data = validation.Normalize(data)
	if err := validation.ValidateForm(data, s.registry); err != nil {
		return models.Booking{}, err
	}

	s.mu.Lock()
	created, err = s.createLocked(ctx, data)
	s.mu.Unlock()
	if err != nil {
		return models.Booking{}, err
	}

	s.logger.Info().Str("booking_id", created.ID).Str("date", created.Date).Str("family_member", created.FamilyMember).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, created)
	return created, nil
}

func (s *BookingStore) createLocked(ctx context.Context, data models.BookingFormData) (models.Booking, error) {
	now := s.now().UTC()
	booking := models.Booking{
		ID:        s.uniqueIDLocked(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	booking.Apply(data)

	next := make([]models.Booking, len(s.bookings), len(s.bookings)+1)
	copy(next, s.bookings)
	next = append(next, booking)

	if err := s.commitLocked(ctx, next); err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

// Update replaces the editable fields of an existing booking. An unknown id
// is reported before the input is validated.
func (s *BookingStore) Update(ctx context.Context, id string, data models.BookingFormData) (updated models.Booking, err error) {
	defer func() { metrics.ObserveOperation(opUpdate, err) }()

	s.mu.Lock()
	updated, err = s.updateLocked(ctx, id, validation.Normalize(data))
	s.mu.Unlock()
	if err != nil {
		return models.Booking{}, err
	}

	s.logger.Info().Str("booking_id", updated.ID).Msg("booking updated")
	s.publishEvent(events.EventBookingUpdated, updated)
	return updated, nil
}

func (s *BookingStore) updateLocked(ctx context.Context, id string, data models.BookingFormData) (models.Booking, error) {
	i := s.indexLocked(id)
	if i < 0 {
		return models.Booking{}, domain.NotFound(id)
	}
	if err := validation.ValidateForm(data, s.registry); err != nil {
		return models.Booking{}, err
	}

	booking := s.bookings[i]
	booking.Apply(data)
	booking.UpdatedAt = s.now().UTC()

	next := append([]models.Booking(nil), s.bookings...)
	next[i] = booking

	if err := s.commitLocked(ctx, next); err != nil {
		return models.Booking{}, err
	}
	return booking, nil
}

// Delete removes the booking with id. Deleting an unknown id is a no-op.
func (s *BookingStore) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.ObserveOperation(opDelete, err) }()

	s.mu.Lock()
	removed, found, err := s.deleteLocked(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug().Str("booking_id", id).Msg("delete of unknown booking ignored")
		return nil
	}

	s.logger.Info().Str("booking_id", id).Msg("booking deleted")
	s.publishEvent(events.EventBookingDeleted, removed)
	return nil
}

func (s *BookingStore) deleteLocked(ctx context.Context, id string) (models.Booking, bool, error) {
	i := s.indexLocked(id)
	if i < 0 {
		return models.Booking{}, false, nil
	}

	removed := s.bookings[i]
	next := make([]models.Booking, 0, len(s.bookings)-1)
	next = append(next, s.bookings[:i]...)
	next = append(next, s.bookings[i+1:]...)

	if err := s.commitLocked(ctx, next); err != nil {
		return models.Booking{}, false, err
	}
	return removed, true, nil
}

// commitLocked saves next and only then makes it the live collection.
func (s *BookingStore) commitLocked(ctx context.Context, next []models.Booking) error {
	if err := s.storage.Save(ctx, next); err != nil {
		var perr *domain.PersistenceError
		if !errors.As(err, &perr) {
			perr = &domain.PersistenceError{Op: domain.OpSave, Err: err}
		}
		s.logger.Error().Err(err).Msg("failed to persist bookings")
		return perr
	}
	s.bookings = next
	metrics.SetBookings(len(next))
	return nil
}

func (s *BookingStore) indexLocked(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *BookingStore) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *BookingStore) publishEvent(eventType string, booking models.Booking) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.NewBookingPayload(booking)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
