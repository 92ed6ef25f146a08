package service

import (
	"context"
	"time"

	"seryvo/internal/general/contracts"
)

// The methods in this file implement websocket.Events.

// DriverConnected marks the realtime channel up and forces a reconcile:
// pushes may have been missed while disconnected.
func (service *Service) DriverConnected(ctx context.Context, driverID string) {
	ctrl := service.manager.Get(driverID)
	ctrl.SetConnected(true)
}

// DriverDisconnected marks the realtime channel down.
func (service *Service) DriverDisconnected(ctx context.Context, driverID string) {
	ctrl, ok := service.manager.Peek(driverID)
	if !ok {
		return
	}
	ctrl.SetConnected(false)
}

// LocationUpdate forwards one inbound location frame to the fanout exchange,
// gated by the active trip's status. Frames outside a streaming status are
// dropped at the source, and frames arriving faster than the configured
// interval are dropped silently so a chatty app cannot flood the fanout.
func (service *Service) LocationUpdate(ctx context.Context, driverID string, frame contracts.WSInbound) error {
	ctrl := service.manager.Get(driverID)

	bookingID, streaming := ctrl.StreamsLocation()
	if !streaming {
		return errLocationNotStreaming
	}
	if frame.Location == nil {
		return errLocationMissing
	}

	if service.throttleLocation(driverID, time.Now()) {
		return nil
	}

	msg := contracts.LocationUpdateMessage{
		DriverID:       driverID,
		BookingID:      bookingID,
		Location:       *frame.Location,
		SpeedKMH:       frame.SpeedKMH,
		HeadingDegrees: frame.Heading,
		Timestamp:      time.Now().UTC(),
		Envelope:       service.envelope(),
	}

	body, err := marshalMessage(msg)
	if err != nil {
		return err
	}
	return service.pub.Publish(contracts.ExchangeLocationFanout, "", body)
}
