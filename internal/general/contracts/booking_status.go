package contracts

import "time"

// BookingStatusMessage announces a confirmed booking transition.
// Routing key: "booking.status.{status}" on ExchangeBookingTopic.
type BookingStatusMessage struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"` // canonical lowercase booking status
	DriverID  string    `json:"driver_id,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	FinalFare *float64  `json:"final_fare,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}
