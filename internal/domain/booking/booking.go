package booking

import (
	"errors"
	"strings"
	"time"
)

// Leg is one pickup/dropoff stop of a booking, in ride order.
type Leg struct {
	Sequence  int
	Address   string
	Latitude  float64
	Longitude float64
	IsPickup  bool
}

// PriceBreakdown mirrors the backend fare decomposition. All amounts are in
// the platform's minor currency unit as floats, matching the REST payloads.
type PriceBreakdown struct {
	BaseFare       float64
	DistanceFare   float64
	TimeFare       float64
	Surcharges     float64
	Discount       float64
	Total          float64
	DriverEarnings float64
	Currency       string
}

// Booking is the driver-side snapshot of a backend booking. The controller
// holds at most one active booking at a time and treats it as read-mostly:
// it is replaced wholesale on reconciliation, never patched field by field.
type Booking struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Actors
	ClientID string
	DriverID *string // nil until assigned

	// Core state
	Status Status

	// Trip composition
	Legs           []Leg
	PassengerCount int
	LuggageCount   int

	// Money
	Price PriceBreakdown

	// Scheduling
	RequestedAt time.Time
	ScheduledAt *time.Time

	// Post-trip
	DriverRating  *int
	ClientRating  *int
	RatingComment *string

	// Status history as reported by the backend.
	Timeline []Event
}

var (
	ErrBookingIDRequired = errors.New("booking id is required")
	ErrNotAssignedTo     = errors.New("booking is not assigned to this driver")
)

// AssignedTo reports whether the booking is assigned to the given driver.
func (b *Booking) AssignedTo(driverID string) bool {
	return b.DriverID != nil && *b.DriverID == driverID
}

// PickupLeg returns the first pickup leg, if any.
func (b *Booking) PickupLeg() (Leg, bool) {
	for _, leg := range b.Legs {
		if leg.IsPickup {
			return leg, true
		}
	}
	return Leg{}, false
}

// DropoffLeg returns the last dropoff leg, if any.
func (b *Booking) DropoffLeg() (Leg, bool) {
	for i := len(b.Legs) - 1; i >= 0; i-- {
		if !b.Legs[i].IsPickup {
			return b.Legs[i], true
		}
	}
	return Leg{}, false
}

// ValidateSnapshot checks the minimal invariants the gateway relies on.
func (b *Booking) ValidateSnapshot() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrBookingIDRequired
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
