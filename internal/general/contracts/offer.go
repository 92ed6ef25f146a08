package contracts

import "time"

// OfferMessage is consumed by the Driver Gateway when the dispatcher
// selects a candidate driver for a booking.
// Routing key: "booking.offer.{driver_id}" on ExchangeBookingTopic.
type OfferMessage struct {
	BookingID        string    `json:"booking_id"`
	DriverID         string    `json:"driver_id"`
	Pickup           GeoPoint  `json:"pickup_location"`
	Dropoff          GeoPoint  `json:"dropoff_location"`
	DistanceKM       float64   `json:"distance_km,omitempty"`
	EstimatedMinutes int       `json:"estimated_minutes,omitempty"`
	DriverEarnings   float64   `json:"driver_earnings,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"` // absolute expiry, UTC
	Envelope
}

// OfferDeclineMessage is published by the Driver Gateway so the
// dispatcher can re-offer the booking to another candidate.
// Routing key: "offer.decline.{booking_id}" on ExchangeBookingTopic.
type OfferDeclineMessage struct {
	BookingID string    `json:"booking_id"`
	DriverID  string    `json:"driver_id"`
	Reason    string    `json:"reason,omitempty"` // "declined" | "expired"
	Timestamp time.Time `json:"timestamp"`
	Envelope
}
