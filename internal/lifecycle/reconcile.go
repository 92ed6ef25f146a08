package lifecycle

import (
	"context"

	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
)

// BumpReload invalidates any in-flight reconcile and queues a new one. It is
// called on every realtime edge: socket connect, disconnect, and pushes that
// arrive while a reload is running. The channel holds at most one pending
// signal; coalescing is fine because a reload always fetches latest state.
func (c *Controller) BumpReload(reason string) {
	gen := c.reloadGen.Add(1)
	select {
	case c.reloadCh <- struct{}{}:
	default:
	}
	c.logger.Debug(context.Background(), "reload_bumped", "Reload generation bumped", map[string]any{
		"driver_id":  c.driverID,
		"generation": gen,
		"reason":     reason,
	})
}

// ReloadGeneration returns the current reload generation.
func (c *Controller) ReloadGeneration() uint64 {
	return c.reloadGen.Load()
}

// SetConnected flips the realtime flag and forces a reconcile on both edges:
// a (re)connect may have missed pushes, a disconnect means the feed can no
// longer be trusted as fresh.
func (c *Controller) SetConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()

	if connected {
		c.BumpReload("ws_connected")
	} else {
		c.BumpReload("ws_disconnected")
	}
}

// RunReloadLoop consumes reload signals until ctx is canceled. Exactly one
// reconcile runs at a time per driver; signals arriving mid-run bump the
// generation and the loop goes again.
func (c *Controller) RunReloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.reloadCh:
			if err := c.Reconcile(ctx); err != nil {
				c.logger.Error(ctx, "reconcile_failed", "Full state reload failed", err, map[string]any{
					"driver_id": c.driverID,
				})
			}
		}
	}
}

// Reconcile performs one full state reload from the backend. The generation
// read before the fetch must still be current when the result is applied;
// otherwise the result is stale (an event arrived mid-fetch) and the loop
// fetches again. Offers are backend-pushed, not listed, so a reload keeps
// the local offer set but re-derives the active trip and availability.
func (c *Controller) Reconcile(ctx context.Context) error {
	for {
		startGen := c.reloadGen.Load()

		snapshots, err := c.backend.ListForDriver(ctx, c.driverID)
		if err != nil {
			return err
		}

		c.mu.Lock()
		if c.reloadGen.Load() != startGen {
			// a realtime event raced the fetch; this result is stale
			c.mu.Unlock()
			continue
		}

		var (
			dropped      []offer.Offer
			availChanged bool
		)

		// the backend view of "a trip in flight for this driver" wins
		foundActive := false
		for _, b := range snapshots {
			if b.AssignedTo(c.driverID) && b.Status.DriverActive() {
				c.active = b
				foundActive = true
				dropped = c.takeAllOffersLocked()
				if c.availability != driver.AvailabilityOnTrip {
					c.availability = driver.AvailabilityOnTrip
					availChanged = true
				}
				break
			}
		}

		if !foundActive && c.active != nil {
			// our active trip is gone remotely
			c.active = nil
			c.pendingRating = false
			if c.availability == driver.AvailabilityOnTrip {
				c.availability = driver.AvailabilityAvailable
				availChanged = true
			}
		}

		availability := c.availability
		c.mu.Unlock()

		for _, o := range dropped {
			c.sink.OfferResolved(ctx, c.driverID, o, OutcomeCleared)
		}
		if availChanged {
			c.sink.AvailabilityChanged(ctx, c.driverID, availability, ShiftNone)
		}

		c.logger.Info(ctx, "reconciled", "Driver state reloaded from backend", map[string]any{
			"driver_id":    c.driverID,
			"generation":   startGen,
			"active_trip":  foundActive,
			"availability": availability.String(),
		})
		return nil
	}
}
