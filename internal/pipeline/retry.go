package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/hsspgest/internal/config"
	"github.com/dgallion1/hsspgest/internal/store"
)

// IsRetryable checks if a store error is worth retrying. Backends mark
// lock contention and transport failures; everything else is final.
func IsRetryable(err error) bool {
	var retryErr *store.RetryableError
	return errors.As(err, &retryErr)
}

// RetryPolicy bounds how often a document write is attempted and how long
// the worker waits between attempts.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// NewRetryPolicy reads the store retry settings from cfg.
func NewRetryPolicy(cfg config.Config) RetryPolicy {
	return RetryPolicy{
		Attempts: cfg.StoreRetries,
		Base:     cfg.StoreRetryBase,
		Max:      cfg.StoreRetryMax,
	}
}

// Backoff returns the wait after attempt n (0-indexed): Base doubled per
// attempt up to Max, plus up to half of that again as jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < attempt && d < p.Max; i++ {
		d *= 2
	}
	if d > p.Max {
		d = p.Max
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}
