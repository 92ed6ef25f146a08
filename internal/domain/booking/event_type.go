package booking

import (
	"errors"
	"strings"
)

// EventType corresponds to the values in the `trip_event_type` table.
type EventType string

const (
	EventStatusChanged   EventType = "status_changed"
	EventOfferPresented  EventType = "offer_presented"
	EventOfferAccepted   EventType = "offer_accepted"
	EventOfferDeclined   EventType = "offer_declined"
	EventOfferExpired    EventType = "offer_expired"
	EventRatingSubmitted EventType = "rating_submitted"
	EventRatingSkipped   EventType = "rating_skipped"
	EventAvailabilitySet EventType = "availability_set"
)

var ErrInvalidEventType = errors.New("invalid trip event type")

// ParseEventType normalizes (lowercases+trims) and validates an event type string.
func ParseEventType(input string) (EventType, error) {
	eventType := EventType(strings.ToLower(strings.TrimSpace(input)))
	if eventType.Valid() {
		return eventType, nil
	}
	return "", ErrInvalidEventType
}

// Valid reports whether eventType is one of the allowed event type constants.
func (eventType EventType) Valid() bool {
	switch eventType {
	case EventStatusChanged,
		EventOfferPresented,
		EventOfferAccepted,
		EventOfferDeclined,
		EventOfferExpired,
		EventRatingSubmitted,
		EventRatingSkipped,
		EventAvailabilitySet:
		return true
	default:
		return false
	}
}

// String returns the string representation of the EventType.
func (eventType EventType) String() string {
	return string(eventType)
}
