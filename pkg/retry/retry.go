package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// MaxAttempts bounds how many times a contended operation is retried.
	MaxAttempts = 5

	baseDelay = 100 * time.Millisecond
	maxJitter = 100 * time.Millisecond
)

// contentionCodes are the Postgres SQLSTATEs worth retrying: serialization
// failures, deadlocks and lock-not-available errors.
var contentionCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// IsContention reports whether err is a transient locking/serialization
// failure that a fresh transaction may succeed past.
func IsContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	_, ok := contentionCodes[pgErr.Code]
	return ok
}

// OnContention runs fn, retrying up to MaxAttempts times when it fails with
// a contention error. Delay doubles each attempt with random jitter added.
func OnContention(ctx context.Context, fn func(context.Context) error) error {
	var err error
	delay := baseDelay
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay + jitter(maxJitter)):
			}
			delay *= 2
		}
		if err = fn(ctx); err == nil || !IsContention(err) {
			return err
		}
	}
	return err
}

func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max) + 1)) //nolint:gosec
}
