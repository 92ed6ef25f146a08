package service

import (
	"context"
	"time"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/driver"
	"seryvo/internal/domain/offer"
	"seryvo/internal/general/contracts"
	"seryvo/internal/general/observability"
	"seryvo/internal/lifecycle"
)

// The methods in this file implement lifecycle.Sink: confirmed controller
// transitions fan out here into audit rows, MQ signals, WS pushes, metrics
// and shift bookkeeping. Side-effect failures are logged, never propagated;
// the controller state is already confirmed by the backend.

// AvailabilityChanged records the presence change, drives shift rows on the
// open/close edges, and announces the new state on the driver topic.
func (service *Service) AvailabilityChanged(ctx context.Context, driverID string, state driver.Availability, edge lifecycle.ShiftEdge) {
	switch edge {
	case lifecycle.ShiftOpens:
		err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
			_, err := service.shifts.Start(ctx, driverID)
			return err
		})
		if err != nil {
			service.logger.Error(ctx, "shift_start_failed", "Failed to open shift row", err, map[string]any{
				"driver_id": driverID,
			})
		}
		observability.DriversOnline.Inc()

	case lifecycle.ShiftCloses:
		err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
			shift, err := service.shifts.GetActiveForDriver(ctx, driverID)
			if err != nil {
				return err
			}
			return service.shifts.End(ctx, shift.ID, *shift)
		})
		if err != nil {
			service.logger.Error(ctx, "shift_end_failed", "Failed to close shift row", err, map[string]any{
				"driver_id": driverID,
			})
		}
		observability.DriversOnline.Dec()
	}

	service.publishJSON(ctx, contracts.ExchangeDriverTopic, contracts.RouteDriverStatusPrefix+driverID,
		contracts.DriverStatusMessage{
			DriverID:  driverID,
			Status:    state.String(),
			Timestamp: time.Now().UTC(),
			Envelope:  service.envelope(),
		})
}

// OfferResolved audits how an offer left the feed and, for driver-initiated
// removals, signals the dispatcher so it can re-offer without waiting.
func (service *Service) OfferResolved(ctx context.Context, driverID string, o offer.Offer, outcome lifecycle.OfferOutcome) {
	var eventType booking.EventType
	switch outcome {
	case lifecycle.OutcomeAccepted:
		eventType = booking.EventOfferAccepted
		observability.OffersAccepted.Inc()
	case lifecycle.OutcomeDeclined:
		eventType = booking.EventOfferDeclined
		observability.OffersDeclined.Inc()
	case lifecycle.OutcomeExpired:
		eventType = booking.EventOfferExpired
		observability.OffersExpired.Inc()
	case lifecycle.OutcomeCleared:
		// siblings dropped on accept or presence change: nothing to audit
		service.logger.Debug(ctx, "offer_cleared", "Offer removed from feed", map[string]any{
			"driver_id":  driverID,
			"booking_id": o.BookingID,
		})
		return
	default:
		return
	}

	service.appendEvent(ctx, o.BookingID, eventType, map[string]any{
		"driver_id":  driverID,
		"expires_at": o.ExpiresAt,
	})

	if outcome == lifecycle.OutcomeDeclined || outcome == lifecycle.OutcomeExpired {
		service.publishJSON(ctx, contracts.ExchangeBookingTopic, contracts.RouteOfferDeclinePrefix+o.BookingID,
			contracts.OfferDeclineMessage{
				BookingID: o.BookingID,
				DriverID:  driverID,
				Reason:    string(outcome),
				Timestamp: time.Now().UTC(),
				Envelope:  service.envelope(),
			})
	}

	// the driver app shows the countdown; a server-side expiry must pull the
	// card even if the app's own timer drifted
	if outcome == lifecycle.OutcomeExpired && service.hub != nil && service.hub.IsDriverConnected(driverID) {
		frame := contracts.WSOfferRevoked{
			Type:      contracts.WSTypeOfferRevoked,
			BookingID: o.BookingID,
			Reason:    string(outcome),
			Envelope:  service.envelope(),
		}
		if err := service.hub.SendToDriver(driverID, frame); err != nil {
			service.logger.Debug(ctx, "ws_push_failed", "Could not push offer revocation over WS", map[string]any{
				"driver_id":  driverID,
				"booking_id": o.BookingID,
			})
		}
	}
}

// StatusChanged audits a confirmed booking transition, announces it on the
// booking topic, and mirrors it down the driver's WebSocket.
func (service *Service) StatusChanged(ctx context.Context, driverID string, b *booking.Booking, prev booking.Status) {
	service.appendEvent(ctx, b.ID, booking.EventStatusChanged, map[string]any{
		"from":      prev.String(),
		"to":        b.Status.String(),
		"driver_id": driverID,
	})

	service.publishJSON(ctx, contracts.ExchangeBookingTopic, contracts.RouteBookingStatusPrefix+b.Status.String(),
		contracts.BookingStatusMessage{
			BookingID: b.ID,
			Status:    b.Status.String(),
			DriverID:  driverID,
			ClientID:  b.ClientID,
			Timestamp: time.Now().UTC(),
			Envelope:  service.envelope(),
		})

	if service.hub != nil && service.hub.IsDriverConnected(driverID) {
		frame := contracts.WSDriverBookingStatus{
			Type:      contracts.WSTypeBookingStatus,
			BookingID: b.ID,
			Status:    b.Status.String(),
			Envelope:  service.envelope(),
		}
		if err := service.hub.SendToDriver(driverID, frame); err != nil {
			service.logger.Debug(ctx, "ws_push_failed", "Could not mirror status over WS", map[string]any{
				"driver_id":  driverID,
				"booking_id": b.ID,
			})
		}
	}
}

// TripClosed audits the rating step and rolls completed trips into the open
// shift's counters.
func (service *Service) TripClosed(ctx context.Context, driverID string, b *booking.Booking, rating int, skipped bool) {
	if skipped {
		service.appendEvent(ctx, b.ID, booking.EventRatingSkipped, map[string]any{
			"driver_id": driverID,
		})
		return
	}

	service.appendEvent(ctx, b.ID, booking.EventRatingSubmitted, map[string]any{
		"driver_id": driverID,
		"rating":    rating,
	})
	observability.TripsCompleted.Inc()

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		shift, err := service.shifts.GetActiveForDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if err := shift.AddTrip(b.Price.DriverEarnings); err != nil {
			return err
		}
		return service.shifts.IncrementCounters(ctx, shift.ID, shift.TripsDone, shift.TotalEarnings)
	})
	if err != nil {
		service.logger.Error(ctx, "shift_counters_failed", "Failed to roll trip into shift counters", err, map[string]any{
			"driver_id":  driverID,
			"booking_id": b.ID,
		})
	}
}

// ----- shared plumbing -----

// appendEvent writes one audit row; failures are logged only.
func (service *Service) appendEvent(ctx context.Context, bookingID string, eventType booking.EventType, data map[string]any) {
	event, err := booking.NewEvent(bookingID, eventType, data)
	if err != nil {
		service.logger.Error(ctx, "event_build_failed", "Failed to build audit event", err, map[string]any{
			"booking_id": bookingID,
			"event_type": eventType.String(),
		})
		return
	}

	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.tripEvents.Append(ctx, event)
	})
	if err != nil {
		service.logger.Error(ctx, "event_append_failed", "Failed to persist audit event", err, map[string]any{
			"booking_id": bookingID,
			"event_type": eventType.String(),
		})
	}
}

// publishJSON marshals and publishes one MQ message; failures are logged only.
func (service *Service) publishJSON(ctx context.Context, exchange, routingKey string, msg any) {
	body, err := marshalMessage(msg)
	if err != nil {
		service.logger.Error(ctx, "mq_marshal_failed", "Failed to marshal MQ message", err, map[string]any{
			"exchange":    exchange,
			"routing_key": routingKey,
		})
		return
	}
	if err := service.pub.Publish(exchange, routingKey, body); err != nil {
		service.logger.Error(ctx, "mq_publish_failed", "Failed to publish MQ message", err, map[string]any{
			"exchange":    exchange,
			"routing_key": routingKey,
		})
	}
}

func (service *Service) envelope() contracts.Envelope {
	return contracts.Envelope{
		Producer: "driver-gateway",
		SentAt:   time.Now().UTC(),
	}
}
