package repository

import (
	"math"
	"time"
)

// RecoveryPolicy spaces out attempts to bring a failed primary back.
type RecoveryPolicy struct {
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRecoveryPolicy retries after a minute, doubling up to 15 minutes.
var DefaultRecoveryPolicy = RecoveryPolicy{
	InitialDelay:  time.Minute,
	MaxDelay:      15 * time.Minute,
	BackoffFactor: 2,
}

// NextDelay returns the wait before the given attempt (1-based), clamped to
// MaxDelay.
func (p RecoveryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Minute
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2
	}

	delay := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if p.MaxDelay > 0 && (d > p.MaxDelay || delay > float64(math.MaxInt64)) {
		d = p.MaxDelay
	}
	if d <= 0 {
		d = p.InitialDelay
	}
	return d
}
