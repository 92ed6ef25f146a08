package lifecycle

import (
	"context"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
)

// RatingResult reports how the rating capture resolved.
type RatingResult struct {
	BookingID string
	Status    booking.Status
	Earnings  float64
	Skipped   bool
}

// SubmitRating resolves the armed rating capture. The completion transition
// is issued first; only after the backend confirms it does the rating call
// go out. A failed rating call after a confirmed completion is logged and
// swallowed: the trip is complete either way. Skipping closes the capture
// locally with no backend calls, leaving the booking where it was.
func (c *Controller) SubmitRating(ctx context.Context, rating int, comment string, skip bool) (RatingResult, error) {
	const op = "rating"
	if err := c.beginOp(op); err != nil {
		return RatingResult{}, err
	}
	defer c.endOp(op)

	c.mu.Lock()
	if !c.pendingRating || c.active == nil {
		c.mu.Unlock()
		return RatingResult{}, ErrRatingNotPending
	}
	active := c.active
	bookingID := active.ID
	prev := active.Status
	if skip {
		// close the capture under the same lock that validated it; a
		// concurrent reconcile may release the trip the moment we let go
		c.pendingRating = false
	}
	c.mu.Unlock()

	if skip {
		c.sink.TripClosed(ctx, c.driverID, active, 0, true)
		c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "rating_skipped",
			"Rating capture closed without completing", map[string]any{
				"driver_id": c.driverID,
			})
		return RatingResult{BookingID: bookingID, Status: prev, Skipped: true}, nil
	}

	confirmed, err := c.backend.UpdateStatus(ctx, bookingID, booking.StatusCompleted, c.actor())
	if err != nil {
		return RatingResult{}, err
	}

	if err := c.backend.SubmitRating(ctx, bookingID, rating, comment, c.actor()); err != nil {
		c.logger.Error(c.logger.WithBookingID(ctx, bookingID), "rating_submit_failed",
			"Completion confirmed but rating was rejected", err, map[string]any{
				"driver_id": c.driverID,
			})
	}

	c.mu.Lock()
	c.active = nil
	c.pendingRating = false
	c.availability = driver.AvailabilityAvailable
	c.mu.Unlock()

	c.sink.StatusChanged(ctx, c.driverID, confirmed, prev)
	c.sink.TripClosed(ctx, c.driverID, confirmed, rating, false)
	c.sink.AvailabilityChanged(ctx, c.driverID, driver.AvailabilityAvailable, ShiftNone)

	c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "trip_completed", "Trip completed and rated", map[string]any{
		"driver_id": c.driverID,
		"rating":    rating,
		"earnings":  confirmed.Price.DriverEarnings,
	})
	return RatingResult{
		BookingID: bookingID,
		Status:    confirmed.Status,
		Earnings:  confirmed.Price.DriverEarnings,
	}, nil
}

// RatingPending reports whether the completion gate is armed.
func (c *Controller) RatingPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingRating
}
