package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"seryvo/internal/domain/booking"
	"seryvo/internal/domain/offer"
	"seryvo/internal/general/contracts"
	"seryvo/internal/general/observability"
	"seryvo/internal/lifecycle"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RunBackgroundConsumers starts the gateway's MQ consumers: dispatcher
// offers and booking status announcements. Each runs until ctx is canceled.
func (service *Service) RunBackgroundConsumers(ctx context.Context) {
	go service.rabbitmq.Consume(ctx, contracts.QueueBookingOffers, "driver-gateway-offers", 10,
		service.handleOfferDelivery)
	go service.rabbitmq.Consume(ctx, contracts.QueueBookingStatus, "driver-gateway-status", 10,
		service.handleStatusDelivery)

	service.logger.Info(ctx, "mq_consumers_started", "Driver gateway MQ consumers started",
		map[string]any{"queues": []string{contracts.QueueBookingOffers, contracts.QueueBookingStatus}})
}

// handleOfferDelivery feeds a dispatcher offer into the driver's controller
// and mirrors it down the WebSocket.
func (service *Service) handleOfferDelivery(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.OfferMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		service.logger.Error(ctx, "mq_message_parse_failed", "Failed to parse offer message", err, nil)
		return err
	}

	// dispatchers that leave expires_at unset get the configured countdown
	expiresAt := fallbackExpiry(msg.ExpiresAt, service.offerTTL, time.Now().UTC())

	o, err := offer.New(msg.BookingID, expiresAt)
	if err != nil {
		service.logger.Error(ctx, "offer_message_invalid", "Offer message missing required fields", err,
			map[string]any{"routing_key": d.RoutingKey})
		return err
	}
	o.PickupAddress = msg.Pickup.Address
	o.DropoffAddress = msg.Dropoff.Address
	o.DistanceKM = msg.DistanceKM
	o.EstimatedMinutes = msg.EstimatedMinutes
	o.DriverEarnings = msg.DriverEarnings

	ctrl := service.manager.Get(msg.DriverID)
	if err := ctrl.AddOffer(ctx, o); err != nil {
		// driver not soliciting or offer dead on arrival: drop, the
		// dispatcher re-offers on timeout
		if errors.Is(err, lifecycle.ErrNotSolicitable) || errors.Is(err, lifecycle.ErrOfferExpired) {
			service.logger.Debug(ctx, "offer_dropped", "Offer not added to feed", map[string]any{
				"driver_id":  msg.DriverID,
				"booking_id": msg.BookingID,
				"reason":     err.Error(),
			})
			return nil
		}
		return err
	}
	observability.OffersReceived.Inc()

	service.appendEvent(ctx, msg.BookingID, booking.EventOfferPresented, map[string]any{
		"driver_id":  msg.DriverID,
		"expires_at": expiresAt,
	})

	if service.hub != nil && service.hub.IsDriverConnected(msg.DriverID) {
		frame := contracts.WSDriverOffer{
			Type:             contracts.WSTypeOffer,
			BookingID:        msg.BookingID,
			Pickup:           msg.Pickup,
			Dropoff:          msg.Dropoff,
			DistanceKM:       msg.DistanceKM,
			EstimatedMinutes: msg.EstimatedMinutes,
			DriverEarnings:   msg.DriverEarnings,
			ExpiresAt:        expiresAt.UTC().Format(time.RFC3339),
			Envelope:         service.envelope(),
		}
		if err := service.hub.SendToDriver(msg.DriverID, frame); err != nil {
			service.logger.Debug(ctx, "ws_push_failed", "Could not mirror offer over WS", map[string]any{
				"driver_id":  msg.DriverID,
				"booking_id": msg.BookingID,
			})
		}
	}

	return nil
}

// handleStatusDelivery reacts to booking transitions announced by other
// services. The message alone is never trusted as state: the controller is
// told to reload and re-derive its view from the backend.
func (service *Service) handleStatusDelivery(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.BookingStatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		service.logger.Error(ctx, "mq_message_parse_failed", "Failed to parse booking status message", err, nil)
		return err
	}

	// ignore our own announcements
	if msg.Producer == "driver-gateway" {
		return nil
	}
	if msg.DriverID == "" {
		return nil
	}

	ctrl, ok := service.manager.Peek(msg.DriverID)
	if !ok {
		return nil
	}

	observability.Reconciles.Inc()
	ctrl.BumpReload("booking_status_push")

	if service.hub != nil && service.hub.IsDriverConnected(msg.DriverID) {
		frame := contracts.WSReload{
			Type:       contracts.WSTypeReload,
			Generation: ctrl.ReloadGeneration(),
			Timestamp:  time.Now().UTC(),
			Envelope:   service.envelope(),
		}
		_ = service.hub.SendToDriver(msg.DriverID, frame)
	}

	return nil
}
