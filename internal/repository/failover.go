package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"familybooking/internal/domain"

	"github.com/rs/zerolog"
)

var (
	// ErrPrimaryUnavailable is returned for writes, and for reads with no
	// cached value, while the primary store is down.
	ErrPrimaryUnavailable = errors.New("primary blob store unavailable")
	// ErrUnverifiedBase rejects a write whose key could not be read from the
	// primary, when the primary turns out to hold a value for it.
	ErrUnverifiedBase     = errors.New("primary holds a value that was never read")
)

// FailoverBlobStore serves reads from fallback while primary is down.
// Writes always go to primary and fail while it is down; fallback only
// mirrors values primary has confirmed. Recovery attempts back off per
// the RecoveryPolicy.
type FailoverBlobStore struct {
	primary  domain.BlobStore
	fallback domain.BlobStore
	logger   *zerolog.Logger

	isDown     atomic.Bool
	mu         sync.Mutex
	lastCheck  time.Time
	attempts   int
	unverified map[string]struct{}
	policy     RecoveryPolicy
	now        func() time.Time
}

func NewFailoverBlobStore(primary, fallback domain.BlobStore, logger *zerolog.Logger) *FailoverBlobStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverBlobStore{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		unverified: make(map[string]struct{}),
		policy:     DefaultRecoveryPolicy,
		now:        time.Now,
	}
}

// shouldTryPrimary reports whether primary may be called now: always while
// it is up, and once per backoff delay while it is down.
func (r *FailoverBlobStore) shouldTryPrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Sub(r.lastCheck) < r.policy.NextDelay(r.attempts+1) {
		return false
	}
	r.lastCheck = r.now()
	return true
}

func (r *FailoverBlobStore) primaryFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCheck = r.now()
	if r.isDown.Swap(true) {
		r.attempts++
		r.logger.Warn().Err(err).Int("attempt", r.attempts).
			Dur("next_in", r.policy.NextDelay(r.attempts+1)).Msg("primary still unavailable")
		return
	}
	r.attempts = 0
	r.logger.Error().Err(err).Msg("Primary blob store failed, serving reads from fallback")
}

func (r *FailoverBlobStore) primaryOK() {
	if !r.isDown.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isDown.Swap(false) {
		r.attempts = 0
		r.logger.Info().Msg("Primary blob store recovered")
	}
}

func (r *FailoverBlobStore) setUnverified(key string, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on {
		r.unverified[key] = struct{}{}
	} else {
		delete(r.unverified, key)
	}
}

func (r *FailoverBlobStore) isUnverified(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.unverified[key]
	return ok
}

func (r *FailoverBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if r.shouldTryPrimary() {
		val, err := r.primary.Get(ctx, key)
		if err == nil || errors.Is(err, domain.ErrBlobNotFound) {
			r.primaryOK()
			r.setUnverified(key, false)
			if err == nil {
				_ = r.fallback.Set(ctx, key, val)
			}
			return val, err
		}
		r.primaryFailed(err)
	}

	val, err := r.fallback.Get(ctx, key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		// primary may hold a value this process has never seen
		r.setUnverified(key, true)
		return nil, fmt.Errorf("%w: no cached value for %s", ErrPrimaryUnavailable, key)
	}
	return val, err
}

// Set writes to primary and mirrors the value to fallback. It fails while
// primary is down, and for an unverified key while primary holds a value.
func (r *FailoverBlobStore) Set(ctx context.Context, key string, value []byte) error {
	if !r.shouldTryPrimary() {
		return fmt.Errorf("%w: write to %s rejected", ErrPrimaryUnavailable, key)
	}

	if r.isUnverified(key) {
		_, err := r.primary.Get(ctx, key)
		switch {
		case err == nil:
			r.primaryOK()
			r.logger.Error().Str("key", key).Msg("refusing to overwrite a value that was never loaded, reload required")
			return fmt.Errorf("%w: %s", ErrUnverifiedBase, key)
		case errors.Is(err, domain.ErrBlobNotFound):
			r.primaryOK()
			r.setUnverified(key, false)
		default:
			r.primaryFailed(err)
			return fmt.Errorf("%w: %w", ErrPrimaryUnavailable, err)
		}
	}

	if err := r.primary.Set(ctx, key, value); err != nil {
		r.primaryFailed(err)
		return fmt.Errorf("%w: %w", ErrPrimaryUnavailable, err)
	}
	r.primaryOK()
	_ = r.fallback.Set(ctx, key, value)
	return nil
}

func (r *FailoverBlobStore) Close() error {
	return errors.Join(r.primary.Close(), r.fallback.Close())
}
