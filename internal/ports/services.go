package ports

import (
	"context"
	"time"
)

// ----- DTOs for the Driver Gateway -----

// AvailabilityInput is the validated input for the presence endpoints.
type AvailabilityInput struct {
	DriverID string // from path, must match token subject
}

// AvailabilityResult matches the API response for a presence change.
type AvailabilityResult struct {
	Availability string `json:"availability"`
	ShiftID      string `json:"shift_id,omitempty"`
	Message      string `json:"message"`
}

// OfferView is one offer as shown to the driver, with remaining seconds
// computed at response time from the absolute expiry.
type OfferView struct {
	BookingID        string  `json:"booking_id"`
	PickupAddress    string  `json:"pickup_address,omitempty"`
	DropoffAddress   string  `json:"dropoff_address,omitempty"`
	DistanceKM       float64 `json:"distance_km,omitempty"`
	EstimatedMinutes int     `json:"estimated_minutes,omitempty"`
	DriverEarnings   float64 `json:"driver_earnings,omitempty"`
	ExpiresAt        string  `json:"expires_at"` // ISO-8601
	RemainingSeconds int     `json:"remaining_seconds"`
}

// OffersResult is the response for GET /drivers/{driver_id}/offers.
type OffersResult struct {
	Availability string      `json:"availability"`
	Offers       []OfferView `json:"offers"`
	Connected    bool        `json:"realtime_connected"`
}

// AcceptOfferInput is the validated input for accepting an offer.
type AcceptOfferInput struct {
	DriverID  string
	BookingID string
}

// AcceptOfferResult matches the API response for an accepted offer.
type AcceptOfferResult struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"` // "driver_assigned"
	Availability string `json:"availability"`
	Message      string `json:"message"`
}

// DeclineOfferInput is the validated input for declining an offer.
type DeclineOfferInput struct {
	DriverID  string
	BookingID string
}

// DeclineOfferResult matches the API response for a declined offer.
type DeclineOfferResult struct {
	BookingID string `json:"booking_id"`
	Remaining int    `json:"remaining_offers"`
	Message   string `json:"message"`
}

// AdvanceTripInput is the validated input for advancing the active trip.
type AdvanceTripInput struct {
	DriverID string
}

// AdvanceTripResult matches the API response for a trip advance.
type AdvanceTripResult struct {
	BookingID      string `json:"booking_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Applied        bool   `json:"applied"`
	RatingRequired bool   `json:"rating_required"`
	Message        string `json:"message"`
}

// SubmitRatingInput is the validated input for the rating step.
type SubmitRatingInput struct {
	DriverID string
	Rating   int    // 1..5, defaulted to 5 when omitted
	Comment  string // optional free text
	Skip     bool   // close the capture without completing
}

// SubmitRatingResult matches the API response for the rating step.
type SubmitRatingResult struct {
	BookingID    string  `json:"booking_id,omitempty"`
	Status       string  `json:"status,omitempty"`
	Availability string  `json:"availability"`
	Earnings     float64 `json:"trip_earnings,omitempty"`
	Skipped      bool    `json:"skipped"`
	Message      string  `json:"message"`
}

// EarningsResult groups performance aggregates and payout snapshots.
type EarningsResult struct {
	Timestamp time.Time        `json:"timestamp"`
	Earnings  EarningsSnapshot `json:"earnings"`
	Payouts   []PayoutSnapshot `json:"payouts"`
}

// ----- Driver Gateway Service Interface -----

// GatewayService exposes the boundary of the driver gateway: every
// operation of the per-driver lifecycle controller plus the read views.
type GatewayService interface {
	ToggleOnline(ctx context.Context, in AvailabilityInput) (AvailabilityResult, error)
	GoOnBreak(ctx context.Context, in AvailabilityInput) (AvailabilityResult, error)
	EndBreak(ctx context.Context, in AvailabilityInput) (AvailabilityResult, error)
	ListOffers(ctx context.Context, driverID string) (OffersResult, error)
	AcceptOffer(ctx context.Context, in AcceptOfferInput) (AcceptOfferResult, error)
	DeclineOffer(ctx context.Context, in DeclineOfferInput) (DeclineOfferResult, error)
	AdvanceTrip(ctx context.Context, in AdvanceTripInput) (AdvanceTripResult, error)
	SubmitRating(ctx context.Context, in SubmitRatingInput) (SubmitRatingResult, error)
	Earnings(ctx context.Context, driverID string) (EarningsResult, error)
	RunBackgroundConsumers(ctx context.Context)
}
