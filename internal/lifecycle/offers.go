package lifecycle

import (
	"context"
	"errors"
	"sort"
	"time"

	"seryvo/internal/backend"
	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
)

// AddOffer inserts a dispatcher-pushed offer into the feed. Offers are only
// accepted while the driver solicits them and has no active trip; anything
// else is dropped silently since the dispatcher will re-offer elsewhere on
// decline-by-timeout.
func (c *Controller) AddOffer(ctx context.Context, o offer.Offer) error {
	c.mu.Lock()
	if !c.availability.SolicitsOffers() || c.active != nil {
		c.mu.Unlock()
		return ErrNotSolicitable
	}
	if o.Expired(c.now()) {
		c.mu.Unlock()
		return ErrOfferExpired
	}
	c.offers[o.BookingID] = o
	c.mu.Unlock()

	c.logger.Debug(ctx, "offer_added", "Offer added to driver feed", map[string]any{
		"driver_id":  c.driverID,
		"booking_id": o.BookingID,
		"expires_at": o.ExpiresAt,
	})
	return nil
}

// Offers sweeps expired entries and returns the live feed ordered by expiry
// (soonest first). Remaining time is recomputed from the absolute expiry at
// call time, never stored.
func (c *Controller) Offers(ctx context.Context) []offer.Offer {
	expired := c.sweepExpired(c.now())

	c.mu.Lock()
	live := make([]offer.Offer, 0, len(c.offers))
	for _, o := range c.offers {
		live = append(live, o)
	}
	c.mu.Unlock()

	for _, o := range expired {
		c.sink.OfferResolved(ctx, c.driverID, o, OutcomeExpired)
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].ExpiresAt.Equal(live[j].ExpiresAt) {
			return live[i].BookingID < live[j].BookingID
		}
		return live[i].ExpiresAt.Before(live[j].ExpiresAt)
	})
	return live
}

// sweepExpired removes every offer whose countdown reached zero at the given
// instant and returns what was removed. Idempotent: a second sweep in the
// same instant removes nothing.
func (c *Controller) sweepExpired(now time.Time) []offer.Offer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []offer.Offer
	for id, o := range c.offers {
		if o.Expired(now) {
			expired = append(expired, o)
			delete(c.offers, id)
		}
	}
	return expired
}

// RunExpiryLoop sweeps the feed on every tick so offers hitting zero are
// removed and signaled even while nobody reads the feed. Runs until ctx is
// canceled.
func (c *Controller) RunExpiryLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, o := range c.sweepExpired(c.now()) {
				c.sink.OfferResolved(ctx, c.driverID, o, OutcomeExpired)
			}
		}
	}
}

// AcceptOffer claims an offer. On backend confirmation the entire offer set
// is cleared (every sibling is now moot), the returned snapshot becomes the
// active trip, and availability is forced to on_trip. A conflict response
// means another driver won the booking: only that offer is removed and the
// rest of the feed stays intact.
func (c *Controller) AcceptOffer(ctx context.Context, bookingID string) (*booking.Booking, error) {
	op := "accept:" + bookingID
	if err := c.beginOp(op); err != nil {
		return nil, err
	}
	defer c.endOp(op)

	now := c.now()
	c.mu.Lock()
	o, ok := c.offers[bookingID]
	if !ok {
		c.mu.Unlock()
		return nil, ErrOfferNotFound
	}
	if o.Expired(now) {
		delete(c.offers, bookingID)
		c.mu.Unlock()
		c.sink.OfferResolved(ctx, c.driverID, o, OutcomeExpired)
		return nil, ErrOfferExpired
	}
	c.mu.Unlock()

	confirmed, err := c.backend.UpdateStatus(ctx, bookingID, booking.StatusDriverAssigned, c.actor())
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			// booking went to someone else; drop just this offer
			c.mu.Lock()
			delete(c.offers, bookingID)
			c.mu.Unlock()
			c.sink.OfferResolved(ctx, c.driverID, o, OutcomeCleared)
		}
		return nil, err
	}

	c.mu.Lock()
	delete(c.offers, bookingID)
	siblings := c.takeAllOffersLocked()
	c.active = confirmed
	c.pendingRating = false
	c.availability = driver.AvailabilityOnTrip
	c.mu.Unlock()

	c.sink.OfferResolved(ctx, c.driverID, o, OutcomeAccepted)
	for _, s := range siblings {
		c.sink.OfferResolved(ctx, c.driverID, s, OutcomeCleared)
	}
	c.sink.AvailabilityChanged(ctx, c.driverID, driver.AvailabilityOnTrip, ShiftNone)
	c.sink.StatusChanged(ctx, c.driverID, confirmed, booking.StatusRequested)

	// a fresh full snapshot follows the accept
	c.BumpReload("offer_accepted")

	c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "offer_accepted", "Offer accepted, trip assigned", map[string]any{
		"driver_id": c.driverID,
		"status":    confirmed.Status.String(),
	})
	return confirmed, nil
}

// DeclineOffer removes exactly one offer from the local feed. The booking
// itself is untouched; only a decline signal leaves the gateway so the
// dispatcher can re-offer immediately instead of waiting for expiry.
func (c *Controller) DeclineOffer(ctx context.Context, bookingID string) (int, error) {
	c.mu.Lock()
	o, ok := c.offers[bookingID]
	if !ok {
		c.mu.Unlock()
		return 0, ErrOfferNotFound
	}
	delete(c.offers, bookingID)
	remaining := len(c.offers)
	c.mu.Unlock()

	c.sink.OfferResolved(ctx, c.driverID, o, OutcomeDeclined)

	c.logger.Info(c.logger.WithBookingID(ctx, bookingID), "offer_declined", "Offer declined by driver", map[string]any{
		"driver_id":        c.driverID,
		"remaining_offers": remaining,
	})
	return remaining, nil
}
