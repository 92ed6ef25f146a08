package driver

import (
	"errors"
	"strings"
	"time"
)

// Shift is the domain entity corresponding to the `driver_shifts` table.
// A shift opens when the driver goes available and closes when they go
// offline; trip counters accumulate on each completed trip.
type Shift struct {
	ID            string
	DriverID      string
	StartedAt     time.Time
	EndedAt       *time.Time
	TripsDone     int
	TotalEarnings float64
}

var (
	ErrDriverIDRequired  = errors.New("driver id is required")
	ErrShiftAlreadyEnded = errors.New("shift already ended")
	ErrNegativeEarnings  = errors.New("earnings cannot be negative")
)

// NewShift creates a new shift starting "now".
func NewShift(driverID string) (*Shift, error) {
	if driverID = strings.TrimSpace(driverID); driverID == "" {
		return nil, ErrDriverIDRequired
	}

	now := time.Now().UTC()
	return &Shift{
		DriverID:      driverID,
		StartedAt:     now,
		TripsDone:     0,
		TotalEarnings: 0,
	}, nil
}

// AddTrip increments the shift counters after a completed trip.
func (shift *Shift) AddTrip(earnings float64) error {
	if shift.EndedAt != nil {
		return ErrShiftAlreadyEnded
	}
	if earnings < 0 {
		return ErrNegativeEarnings
	}

	shift.TripsDone++
	shift.TotalEarnings += earnings
	return nil
}

// End marks the shift ended "now". Returns an error on double end.
func (shift *Shift) End() error {
	if shift.EndedAt != nil {
		return ErrShiftAlreadyEnded
	}
	now := time.Now().UTC()
	shift.EndedAt = &now
	return nil
}
