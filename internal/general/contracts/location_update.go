package contracts

import "time"

// LocationUpdateMessage is broadcast by the Driver Gateway while a trip
// is in a location-streaming status.
// Exchange: ExchangeLocationFanout (fanout, no routing key).
type LocationUpdateMessage struct {
	DriverID       string    `json:"driver_id"`
	BookingID      string    `json:"booking_id,omitempty"`
	Location       GeoPoint  `json:"location"`
	SpeedKMH       float64   `json:"speed_kmh,omitempty"`
	HeadingDegrees float64   `json:"heading_degrees,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Envelope
}
