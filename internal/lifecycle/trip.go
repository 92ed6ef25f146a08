package lifecycle

import (
	"context"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
)

// AdvanceResult reports what a single advance press did.
type AdvanceResult struct {
	BookingID string
	Status    booking.Status
	// Applied is true when a backend transition was confirmed. It is false
	// when the press armed the rating capture instead.
	Applied bool
	// RatingRequired is true when the trip reached the completion gate:
	// the booking stays in_progress until the rating step resolves it.
	RatingRequired bool
}

// AdvanceTrip moves the active trip one step along the fixed progression.
// Every press maps to exactly one transition; there is no way to skip.
// The final step (in_progress -> completed) is withheld: pressing advance
// there arms the rating capture and issues no backend call at all.
func (c *Controller) AdvanceTrip(ctx context.Context) (AdvanceResult, error) {
	const op = "advance"
	if err := c.beginOp(op); err != nil {
		return AdvanceResult{}, err
	}
	defer c.endOp(op)

	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return AdvanceResult{}, ErrNoActiveTrip
	}
	bookingID := c.active.ID
	current := c.active.Status
	c.mu.Unlock()

	next, ok := current.Next()
	if !ok {
		return AdvanceResult{}, ErrTripNotAdvanceable
	}

	// completion is gated behind the rating step
	if next == booking.StatusCompleted {
		c.mu.Lock()
		c.pendingRating = true
		c.mu.Unlock()

		c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "rating_capture_armed",
			"Trip at completion gate, awaiting rating", map[string]any{
				"driver_id": c.driverID,
			})
		return AdvanceResult{BookingID: bookingID, Status: current, RatingRequired: true}, nil
	}

	confirmed, err := c.backend.UpdateStatus(ctx, bookingID, next, c.actor())
	if err != nil {
		// local state untouched; the next reconcile or retry resolves it
		return AdvanceResult{}, err
	}

	c.mu.Lock()
	c.active = confirmed
	c.mu.Unlock()

	c.sink.StatusChanged(ctx, c.driverID, confirmed, current)

	c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "trip_advanced", "Trip status advanced", map[string]any{
		"driver_id": c.driverID,
		"from":      current.String(),
		"to":        confirmed.Status.String(),
	})
	return AdvanceResult{BookingID: bookingID, Status: confirmed.Status, Applied: true}, nil
}

// AdoptBooking applies an observed backend snapshot for this driver. It is
// the forced-override path: a booking actively assigned to the driver wins
// over whatever the controller believed, including availability. Snapshots
// for a trip that ended remotely (cancellation and the like) release the
// active slot and put the driver back to available.
func (c *Controller) AdoptBooking(ctx context.Context, b *booking.Booking) {
	if b == nil {
		return
	}

	c.mu.Lock()

	var (
		dropped       []offer.Offer
		availChanged  bool
		statusChanged bool
		prev          booking.Status
	)

	switch {
	case b.AssignedTo(c.driverID) && b.Status.DriverActive():
		if c.active != nil && c.active.ID == b.ID {
			prev = c.active.Status
			statusChanged = prev != b.Status
		} else {
			prev = booking.StatusRequested
			statusChanged = true
		}
		c.active = b
		dropped = c.takeAllOffersLocked()
		if c.availability != driver.AvailabilityOnTrip {
			c.availability = driver.AvailabilityOnTrip
			availChanged = true
		}

	case c.active != nil && c.active.ID == b.ID && !b.Status.DriverActive():
		// trip ended remotely; release the slot
		prev = c.active.Status
		statusChanged = prev != b.Status
		c.active = nil
		c.pendingRating = false
		if c.availability == driver.AvailabilityOnTrip {
			c.availability = driver.AvailabilityAvailable
			availChanged = true
		}

	default:
		c.mu.Unlock()
		return
	}

	availability := c.availability
	c.mu.Unlock()

	for _, o := range dropped {
		c.sink.OfferResolved(ctx, c.driverID, o, OutcomeCleared)
	}
	if statusChanged {
		c.sink.StatusChanged(ctx, c.driverID, b, prev)
	}
	if availChanged {
		c.sink.AvailabilityChanged(ctx, c.driverID, availability, ShiftNone)
	}

	c.logger.Info(c.logger.WithBookingID(ctx, b.ID), "booking_adopted", "Observed booking snapshot applied", map[string]any{
		"driver_id":    c.driverID,
		"status":       b.Status.String(),
		"availability": availability.String(),
	})
}
