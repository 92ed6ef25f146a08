package offer

import (
	"errors"
	"strings"
	"time"
)

// Offer is a transient, client-local projection of a booking in `requested`
// status presented to one driver. It is never persisted by the backend;
// it exists only while listed in a driver's offer set and is removed on
// accept, decline, or expiry.
type Offer struct {
	BookingID        string
	PickupAddress    string
	DropoffAddress   string
	DistanceKM       float64
	EstimatedMinutes int
	DriverEarnings   float64

	// ExpiresAt is the absolute expiry timestamp fixed at feed-population
	// time. It is the single ground truth for all remaining-time math.
	ExpiresAt time.Time
}

var (
	ErrBookingIDRequired = errors.New("offer booking id is required")
	ErrExpiryRequired    = errors.New("offer expiry timestamp is required")
)

// New builds an offer for a requested booking with an absolute expiry.
func New(bookingID string, expiresAt time.Time) (Offer, error) {
	if bookingID = strings.TrimSpace(bookingID); bookingID == "" {
		return Offer{}, ErrBookingIDRequired
	}
	if expiresAt.IsZero() {
		return Offer{}, ErrExpiryRequired
	}
	return Offer{BookingID: bookingID, ExpiresAt: expiresAt.UTC()}, nil
}

// RemainingSeconds returns the whole seconds left before expiry at the
// given instant. It is a pure function of (ExpiresAt, now): recomputed from
// the absolute timestamp on every tick rather than decremented, so multiple
// offers sharing one ticker stay mutually consistent and the value survives
// suspended timers without drift. Never negative.
func (o Offer) RemainingSeconds(now time.Time) int {
	d := o.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Expired reports whether the offer's remaining time has reached zero.
func (o Offer) Expired(now time.Time) bool {
	return o.RemainingSeconds(now) == 0
}
