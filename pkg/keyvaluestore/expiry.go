package keyvaluestore

import (
	"math"
	"time"
)

// Expiry is the absolute instant after which a key is no longer visible.
// The zero value means the key never expires.
type Expiry struct {
	at time.Time
}

// NewExpiry converts a relative duration of amount units, measured from now,
// into an absolute Expiry.
func NewExpiry(now time.Time, amount uint64, unit time.Duration) (Expiry, error) {
	if unit <= 0 || amount > uint64(math.MaxInt64/int64(unit)) {
		return Expiry{}, ErrInvalidExpiry
	}

	return Expiry{at: now.Add(time.Duration(amount) * unit)}, nil
}

// ExpiryAt builds an Expiry for an absolute instant.
func ExpiryAt(at time.Time) Expiry {
	return Expiry{at: at}
}

func (e Expiry) At() time.Time {
	return e.at
}

func (e Expiry) IsZero() bool {
	return e.at.IsZero()
}

// Elapsed reports whether the expiry instant has been reached at now.
func (e Expiry) Elapsed(now time.Time) bool {
	return !e.IsZero() && !now.Before(e.at)
}
