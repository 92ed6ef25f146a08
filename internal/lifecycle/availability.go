package lifecycle

import (
	"context"

	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
)

// ToggleOnline flips the driver between offline and available. The toggle is
// rejected while on_trip or on_break: on_trip is derived state and a break
// must be ended explicitly. The backend is updated first; local state changes
// only after the backend confirms.
func (c *Controller) ToggleOnline(ctx context.Context) (driver.Availability, error) {
	const op = "availability"
	if err := c.beginOp(op); err != nil {
		return "", err
	}
	defer c.endOp(op)

	c.mu.Lock()
	next, err := c.availability.Toggled()
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	if err := c.backend.SetAvailability(ctx, c.driverID, next, c.actor()); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.availability = next
	var dropped []offer.Offer
	if !next.SolicitsOffers() {
		dropped = c.takeAllOffersLocked()
	}
	c.mu.Unlock()

	edge := ShiftCloses
	if next == driver.AvailabilityAvailable {
		edge = ShiftOpens
	}
	c.sink.AvailabilityChanged(ctx, c.driverID, next, edge)
	for _, o := range dropped {
		c.sink.OfferResolved(ctx, c.driverID, o, OutcomeCleared)
	}

	c.logger.Info(ctx, "availability_toggled", "Driver presence changed", map[string]any{
		"driver_id":    c.driverID,
		"availability": next.String(),
	})
	return next, nil
}

// GoOnBreak pauses offer solicitation without closing the shift. Allowed
// only from available; the offer set is dropped locally since a driver on
// break must never see a countdown still running.
func (c *Controller) GoOnBreak(ctx context.Context) (driver.Availability, error) {
	const op = "availability"
	if err := c.beginOp(op); err != nil {
		return "", err
	}
	defer c.endOp(op)

	c.mu.Lock()
	allowed := c.availability.CanGoOnBreak()
	c.mu.Unlock()
	if !allowed {
		return "", driver.ErrInvalidAvailabilitySwitch
	}

	if err := c.backend.SetAvailability(ctx, c.driverID, driver.AvailabilityOnBreak, c.actor()); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.availability = driver.AvailabilityOnBreak
	dropped := c.takeAllOffersLocked()
	c.mu.Unlock()

	c.sink.AvailabilityChanged(ctx, c.driverID, driver.AvailabilityOnBreak, ShiftNone)
	for _, o := range dropped {
		c.sink.OfferResolved(ctx, c.driverID, o, OutcomeCleared)
	}

	c.logger.Info(ctx, "break_started", "Driver went on break", map[string]any{
		"driver_id": c.driverID,
	})
	return driver.AvailabilityOnBreak, nil
}

// EndBreak returns the driver to available. Allowed only from on_break.
func (c *Controller) EndBreak(ctx context.Context) (driver.Availability, error) {
	const op = "availability"
	if err := c.beginOp(op); err != nil {
		return "", err
	}
	defer c.endOp(op)

	c.mu.Lock()
	allowed := c.availability.CanEndBreak()
	c.mu.Unlock()
	if !allowed {
		return "", driver.ErrInvalidAvailabilitySwitch
	}

	if err := c.backend.SetAvailability(ctx, c.driverID, driver.AvailabilityAvailable, c.actor()); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.availability = driver.AvailabilityAvailable
	c.mu.Unlock()

	c.sink.AvailabilityChanged(ctx, c.driverID, driver.AvailabilityAvailable, ShiftNone)

	c.logger.Info(ctx, "break_ended", "Driver returned from break", map[string]any{
		"driver_id": c.driverID,
	})
	return driver.AvailabilityAvailable, nil
}

// takeAllOffersLocked empties the offer set and returns what was dropped.
// Caller must hold c.mu.
func (c *Controller) takeAllOffersLocked() []offer.Offer {
	if len(c.offers) == 0 {
		return nil
	}
	dropped := make([]offer.Offer, 0, len(c.offers))
	for _, o := range c.offers {
		dropped = append(dropped, o)
	}
	c.offers = make(map[string]offer.Offer)
	return dropped
}
