package repository

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"familybooking/internal/domain"
	"familybooking/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBlobStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBlobStore) Close() error {
	return m.Called().Error(0)
}

// flakyBlobStore is a memory store that can be switched off.
type flakyBlobStore struct {
	*MemoryBlobStore
	down  atomic.Bool
	calls atomic.Int32
}

var errConnRefused = errors.New("connection refused")

func (f *flakyBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.down.Load() {
		return nil, errConnRefused
	}
	return f.MemoryBlobStore.Get(ctx, key)
}

func (f *flakyBlobStore) Set(ctx context.Context, key string, value []byte) error {
	f.calls.Add(1)
	if f.down.Load() {
		return errConnRefused
	}
	return f.MemoryBlobStore.Set(ctx, key, value)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFailover(t *testing.T) (*FailoverBlobStore, *flakyBlobStore, *fakeClock) {
	t.Helper()
	primary := &flakyBlobStore{MemoryBlobStore: NewMemoryBlobStore()}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	logger := zerolog.New(io.Discard)
	repo := NewFailoverBlobStore(primary, NewMemoryBlobStore(), &logger)
	repo.now = clock.Now
	return repo, primary, clock
}

func namedBookings(ids ...string) []models.Booking {
	out := make([]models.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Booking{ID: id, Date: "2024-05-01", Location: "School", FamilyMember: "3", PickupTime: "08:00", DropoffTime: "08:30"})
	}
	return out
}

func TestFailoverBlobStore_PrimaryUp(t *testing.T) {
	repo, primary, _ := newFailover(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1]`)))

	got, err := primary.MemoryBlobStore.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)

	got, err = repo.fallback.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)

	_, err = repo.Get(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
	assert.False(t, repo.isDown.Load())
}

func TestFailoverBlobStore_WriteWhilePrimaryDownFails(t *testing.T) {
	repo, primary, clock := newFailover(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1]`)))

	primary.down.Store(true)

	err := repo.Set(ctx, "bookings", []byte(`[2]`))
	require.ErrorIs(t, err, ErrPrimaryUnavailable)
	assert.True(t, repo.isDown.Load())

	// reads keep serving the last value primary confirmed
	got, err := repo.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)

	err = repo.Set(ctx, "bookings", []byte(`[3]`))
	require.ErrorIs(t, err, ErrPrimaryUnavailable)

	primary.down.Store(false)
	clock.Advance(2 * time.Minute)

	got, err = primary.MemoryBlobStore.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got, "rejected writes never reach primary")

	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[4]`)))
	assert.False(t, repo.isDown.Load())
}

func TestFailoverBlobStore_StartupOutageKeepsPrimaryData(t *testing.T) {
	repo, primary, clock := newFailover(t)
	ctx := context.Background()
	snapshots := NewSnapshotStore(repo, "bookings")

	seeded, err := EncodeBookings(namedBookings("a", "b", "c"))
	require.NoError(t, err)
	require.NoError(t, primary.MemoryBlobStore.Set(ctx, "bookings", seeded))
	primary.down.Store(true)

	loaded, err := snapshots.Load(ctx)
	require.ErrorIs(t, err, ErrPrimaryUnavailable)
	assert.Empty(t, loaded)

	require.ErrorIs(t, snapshots.Save(ctx, namedBookings("new")), ErrPrimaryUnavailable)

	primary.down.Store(false)
	clock.Advance(2 * time.Minute)

	// the caller's base was never loaded, so it must not replace primary
	require.ErrorIs(t, snapshots.Save(ctx, namedBookings("new")), ErrUnverifiedBase)

	raw, err := primary.MemoryBlobStore.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, seeded, raw)

	loaded, err = snapshots.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, namedBookings("a", "b", "c"), loaded)

	require.NoError(t, snapshots.Save(ctx, append(loaded, namedBookings("new")...)))
	stored, err := snapshots.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestFailoverBlobStore_StartupOutageWithEmptyPrimary(t *testing.T) {
	repo, primary, clock := newFailover(t)
	ctx := context.Background()
	primary.down.Store(true)

	_, err := repo.Get(ctx, "bookings")
	require.ErrorIs(t, err, ErrPrimaryUnavailable)

	primary.down.Store(false)
	clock.Advance(2 * time.Minute)

	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1]`)))
	assert.False(t, repo.isUnverified("bookings"))

	got, err := primary.MemoryBlobStore.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)
}

func TestFailoverBlobStore_RecoveryBacksOff(t *testing.T) {
	repo, primary, clock := newFailover(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[1]`)))

	primary.down.Store(true)
	require.Error(t, repo.Set(ctx, "bookings", []byte(`[2]`)))
	calls := primary.calls.Load()

	// first retry waits a minute
	_, err := repo.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, calls, primary.calls.Load())

	clock.Advance(time.Minute)
	require.Error(t, repo.Set(ctx, "bookings", []byte(`[2]`)))
	assert.Equal(t, calls+1, primary.calls.Load())
	assert.Equal(t, 1, repo.attempts)

	// second retry waits two minutes
	clock.Advance(90 * time.Second)
	require.Error(t, repo.Set(ctx, "bookings", []byte(`[2]`)))
	assert.Equal(t, calls+1, primary.calls.Load())

	primary.down.Store(false)
	clock.Advance(time.Minute)
	require.NoError(t, repo.Set(ctx, "bookings", []byte(`[2]`)))
	assert.False(t, repo.isDown.Load())
	assert.Equal(t, 0, repo.attempts)
}

func TestFailoverBlobStore_Close(t *testing.T) {
	primary := new(mockBlobStore)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverBlobStore(primary, NewMemoryBlobStore(), &logger)

	closeErr := errors.New("close failed")
	primary.On("Close").Return(closeErr).Once()

	assert.ErrorIs(t, repo.Close(), closeErr)
	primary.AssertExpectations(t)
}
