package contracts

import "time"

// WS frame type names pushed to driver connections.
const (
	WSTypeOffer         = "new_offer"
	WSTypeOfferRevoked  = "offer_revoked"
	WSTypeBookingStatus = "booking_status_update"
	WSTypeReload        = "reload"
)

// WSDriverOffer mirrors "new_offer" frames pushed to the driver app.
type WSDriverOffer struct {
	Type             string   `json:"type"` // WSTypeOffer
	BookingID        string   `json:"booking_id"`
	Pickup           GeoPoint `json:"pickup_location"`
	Dropoff          GeoPoint `json:"dropoff_location"`
	DistanceKM       float64  `json:"distance_km,omitempty"`
	EstimatedMinutes int      `json:"estimated_minutes,omitempty"`
	DriverEarnings   float64  `json:"driver_earnings,omitempty"`
	ExpiresAt        string   `json:"expires_at"` // ISO-8601
	Envelope
}

// WSOfferRevoked tells the driver app to drop an offer that is no longer
// actionable (countdown hit zero server-side).
type WSOfferRevoked struct {
	Type      string `json:"type"` // WSTypeOfferRevoked
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"` // "expired"
	Envelope
}

// WSDriverBookingStatus mirrors booking transitions pushed to the driver app.
type WSDriverBookingStatus struct {
	Type      string       `json:"type"` // WSTypeBookingStatus
	BookingID string       `json:"booking_id"`
	Status    string       `json:"status"`
	Client    *ClientBrief `json:"client_info,omitempty"`
	Envelope
}

// WSReload instructs the driver app to refetch its full state. The
// generation lets the app drop frames raced by an in-flight reload.
type WSReload struct {
	Type       string    `json:"type"` // WSTypeReload
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	Envelope
}

// WSInbound is the single frame shape accepted from driver connections.
type WSInbound struct {
	Type      string    `json:"type"`                 // "auth" | "location_update" | "ping"
	Token     string    `json:"token,omitempty"`      // first frame only
	Location  *GeoPoint `json:"location,omitempty"`   // location_update frames
	SpeedKMH  float64   `json:"speed_kmh,omitempty"`  // location_update frames
	Heading   float64   `json:"heading,omitempty"`    // location_update frames
	Timestamp time.Time `json:"timestamp,omitempty"`
}
