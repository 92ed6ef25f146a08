package booking

import (
	"errors"
	"strings"
)

// Status is a booking status using the Seryvo canonical lifecycle values.
type Status string

const (
	// Pre-assignment states, never reachable by the driver controller.
	StatusDraft     Status = "draft"
	StatusRequested Status = "requested"

	// Assignment and pickup states.
	StatusDriverAssigned      Status = "driver_assigned"
	StatusDriverEnRoutePickup Status = "driver_en_route_pickup"
	StatusDriverArrived       Status = "driver_arrived"

	// Trip state.
	StatusInProgress Status = "in_progress"

	// Completion state.
	StatusCompleted Status = "completed"

	// Cancellation and no-show states.
	StatusCanceledByClient Status = "canceled_by_client"
	StatusCanceledByDriver Status = "canceled_by_driver"
	StatusCanceledBySystem Status = "canceled_by_system"
	StatusNoShowClient     Status = "no_show_client"
	StatusNoShowDriver     Status = "no_show_driver"

	// Post-trip states.
	StatusDisputed Status = "disputed"
	StatusRefunded Status = "refunded"
)

var ErrInvalidStatus = errors.New("invalid booking status")

// progression is the fixed linear happy-path order. Statuses outside this
// table (terminal, cancellation, pre-assignment) have no successor.
var progression = map[Status]Status{
	StatusDriverAssigned:      StatusDriverEnRoutePickup,
	StatusDriverEnRoutePickup: StatusDriverArrived,
	StatusDriverArrived:       StatusInProgress,
	StatusInProgress:          StatusCompleted,
}

// ParseStatus normalizes (lowercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed booking status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusDraft, StatusRequested,
		StatusDriverAssigned, StatusDriverEnRoutePickup, StatusDriverArrived,
		StatusInProgress, StatusCompleted,
		StatusCanceledByClient, StatusCanceledByDriver, StatusCanceledBySystem,
		StatusNoShowClient, StatusNoShowDriver,
		StatusDisputed, StatusRefunded:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Next returns the unique successor of status in the fixed progression
// table. The second return is false when status has no successor (terminal,
// cancellation, or pre-assignment states).
func (status Status) Next() (Status, bool) {
	next, ok := progression[status]
	return next, ok
}

// Terminal reports whether the booking lifecycle ended in this status.
func (status Status) Terminal() bool {
	switch status {
	case StatusCompleted,
		StatusCanceledByClient, StatusCanceledByDriver, StatusCanceledBySystem,
		StatusNoShowClient, StatusNoShowDriver,
		StatusRefunded:
		return true
	default:
		return false
	}
}

// Active reports whether the booking counts as a trip in flight.
func (status Status) Active() bool {
	switch status {
	case StatusRequested, StatusDriverAssigned, StatusDriverEnRoutePickup,
		StatusDriverArrived, StatusInProgress:
		return true
	default:
		return false
	}
}

// DriverActive reports whether a driver is actively on the booking.
// on_trip availability is derived from any booking in one of these states.
func (status Status) DriverActive() bool {
	switch status {
	case StatusDriverAssigned, StatusDriverEnRoutePickup,
		StatusDriverArrived, StatusInProgress:
		return true
	default:
		return false
	}
}

// StreamsLocation reports whether the live location stream should be
// enabled while the active trip is in this status.
func (status Status) StreamsLocation() bool {
	switch status {
	case StatusDriverEnRoutePickup, StatusDriverArrived, StatusInProgress:
		return true
	default:
		return false
	}
}
