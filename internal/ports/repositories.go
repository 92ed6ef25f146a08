package ports

import (
	"context"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TripEventRepository defines the methods for the gateway's local audit log
// of lifecycle events (status changes, offer expiry/decline, ratings).
type TripEventRepository interface {
	Append(ctx context.Context, event *booking.Event) error
	ListForBooking(ctx context.Context, bookingID string, limit int) ([]*booking.Event, error)
}

// ShiftRepository defines the methods for managing driver shift records.
type ShiftRepository interface {
	Start(ctx context.Context, driverID string) (shiftID string, err error)
	End(ctx context.Context, shiftID string, summary driver.Shift) error
	GetActiveForDriver(ctx context.Context, driverID string) (*driver.Shift, error)
	IncrementCounters(ctx context.Context, shiftID string, tripsDone int, totalEarnings float64) error
}
