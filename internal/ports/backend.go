package ports

import (
	"context"
	"time"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/user"
)

// EarningsSnapshot is a read-only performance aggregate fetched per load.
type EarningsSnapshot struct {
	TotalTrips     int     `json:"total_trips"`
	TotalEarnings  float64 `json:"total_earnings"`
	EarningsToday  float64 `json:"earnings_today"`
	EarningsWeek   float64 `json:"earnings_week"`
	AverageRating  float64 `json:"average_rating"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// PayoutSnapshot is a single read-only payout record for the driver.
type PayoutSnapshot struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	ArrivalDate time.Time `json:"arrival_date"`
}

// BookingBackend is the boundary to the Seryvo REST backend. All booking
// state is owned server-side; the gateway only reads snapshots and issues
// explicit transitions with the acting identity attached.
//
// UpdateStatus must be idempotent when called twice with the same target on
// an already-transitioned booking: the backend fails gracefully and the
// returned error (or snapshot) never corrupts local state.
type BookingBackend interface {
	// ListForDriver fetches booking snapshots visible to the driver: the
	// requested feed plus any booking the driver is actively on.
	ListForDriver(ctx context.Context, driverID string) ([]*booking.Booking, error)

	// UpdateStatus transitions a booking to the target status and returns
	// the confirmed snapshot. Local state must only change from the result.
	UpdateStatus(ctx context.Context, bookingID string, target booking.Status, actor user.Actor) (*booking.Booking, error)

	// SubmitRating attaches a 1-5 rating and optional comment to a
	// completed (or completing) booking, scoped by the submitter role.
	SubmitRating(ctx context.Context, bookingID string, rating int, comment string, actor user.Actor) error

	// SetAvailability updates the driver's presence state remotely.
	SetAvailability(ctx context.Context, driverID string, state driver.Availability, actor user.Actor) error

	// Earnings fetches the read-only performance aggregates.
	Earnings(ctx context.Context, driverID string) (EarningsSnapshot, error)
}

// PayoutProvider serves read-only payout snapshots for a driver account.
type PayoutProvider interface {
	Snapshots(ctx context.Context, accountID string, limit int) ([]PayoutSnapshot, error)
}
