package driver

import (
	"errors"
	"strings"
)

// Availability is the driver's runtime presence state using the Seryvo
// canonical values. on_trip is derived from the existence of an active
// trip and is never directly settable by the driver.
type Availability string

const (
	AvailabilityOffline   Availability = "offline"
	AvailabilityAvailable Availability = "available"
	AvailabilityOnTrip    Availability = "on_trip"
	AvailabilityOnBreak   Availability = "on_break"
)

var (
	ErrInvalidAvailability       = errors.New("invalid availability state")
	ErrInvalidAvailabilitySwitch = errors.New("invalid availability transition")
)

// ParseAvailability normalizes (lowercases+trims) and validates an availability string.
func ParseAvailability(in string) (Availability, error) {
	state := Availability(strings.ToLower(strings.TrimSpace(in)))
	if state.Valid() {
		return state, nil
	}
	return "", ErrInvalidAvailability
}

// Valid reports whether the state is one of the allowed availability constants.
func (state Availability) Valid() bool {
	switch state {
	case AvailabilityOffline, AvailabilityAvailable, AvailabilityOnTrip, AvailabilityOnBreak:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Availability.
func (state Availability) String() string {
	return string(state)
}

// SolicitsOffers reports whether offers may be populated in this state.
func (state Availability) SolicitsOffers() bool {
	return state == AvailabilityAvailable
}

// Toggled returns the opposite presence state for the online toggle.
// The toggle is defined only between offline and available; toggling while
// on_trip or on_break is rejected rather than left undefined.
func (state Availability) Toggled() (Availability, error) {
	switch state {
	case AvailabilityOffline:
		return AvailabilityAvailable, nil
	case AvailabilityAvailable:
		return AvailabilityOffline, nil
	default:
		return "", ErrInvalidAvailabilitySwitch
	}
}

// CanGoOnBreak reports whether a break may start from this state.
// Breaks are permitted only from available.
func (state Availability) CanGoOnBreak() bool {
	return state == AvailabilityAvailable
}

// CanEndBreak reports whether the driver may return to available.
func (state Availability) CanEndBreak() bool {
	return state == AvailabilityOnBreak
}
