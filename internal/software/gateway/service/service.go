package service

import (
	"context"
	"sync"
	"time"

	"seryvo/internal/general/logger"
	"seryvo/internal/general/rabbitmq"
	"seryvo/internal/general/websocket"
	"seryvo/internal/lifecycle"
	"seryvo/internal/ports"
)

// Service encapsulates the driver gateway logic and dependencies. It is the
// single sink for controller side effects and the event target for the
// WebSocket hub.
type Service struct {
	logger     *logger.Logger
	uow        ports.UnitOfWork
	tripEvents ports.TripEventRepository
	shifts     ports.ShiftRepository
	backend    ports.BookingBackend
	payouts    ports.PayoutProvider
	pub        *rabbitmq.MQPublisher
	rabbitmq   *rabbitmq.Client
	hub        *websocket.DriverHub
	manager    *lifecycle.Manager

	offerTTL         time.Duration // fallback countdown for offers without an expiry
	locationInterval time.Duration // minimum spacing between forwarded location frames
	lastLocation     sync.Map      // driverID -> time.Time of the last forwarded frame
}

var (
	_ ports.GatewayService = (*Service)(nil)
	_ websocket.Events     = (*Service)(nil)
	_ lifecycle.Sink       = (*Service)(nil)
)

// NewGatewayService creates the driver gateway service with the provided
// dependencies. ctx bounds the per-driver reload loops. offerTTL is the
// countdown applied to offers arriving without an expiry; locationInterval
// is the floor between forwarded location frames per driver.
func NewGatewayService(
	ctx context.Context,
	logger *logger.Logger,
	uow ports.UnitOfWork,
	tripEvents ports.TripEventRepository,
	shifts ports.ShiftRepository,
	backend ports.BookingBackend,
	payouts ports.PayoutProvider,
	pub *rabbitmq.MQPublisher,
	rabbit *rabbitmq.Client,
	offerTTL time.Duration,
	locationInterval time.Duration,
) *Service {
	svc := &Service{
		logger:           logger,
		uow:              uow,
		tripEvents:       tripEvents,
		shifts:           shifts,
		backend:          backend,
		payouts:          payouts,
		pub:              pub,
		rabbitmq:         rabbit,
		offerTTL:         offerTTL,
		locationInterval: locationInterval,
	}
	svc.manager = lifecycle.NewManager(ctx, backend, svc, logger)
	return svc
}

// AttachHub wires the WebSocket hub for outbound pushes. The hub is created
// after the service (it needs the service as its event target), so this must
// run before traffic is served.
func (service *Service) AttachHub(hub *websocket.DriverHub) {
	service.hub = hub
}
