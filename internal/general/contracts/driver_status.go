package contracts

import "time"

// DriverStatusMessage is published by the Driver Gateway on every
// confirmed availability change.
// Routing key: "driver.status.{driver_id}" on ExchangeDriverTopic.
type DriverStatusMessage struct {
	DriverID  string    `json:"driver_id"`
	Status    string    `json:"status"` // offline|available|on_trip|on_break
	BookingID string    `json:"booking_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}
