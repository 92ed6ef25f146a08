package service

import (
	"context"
	"encoding/json"

	"seryvo/internal/domain/driver"
	"seryvo/internal/general/contracts"
	"seryvo/internal/general/kafka"
	"seryvo/internal/general/logger"
	"seryvo/internal/general/observability"
	"seryvo/internal/general/rabbitmq"
	"seryvo/internal/general/redisgeo"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RelayService fans driver location updates out of RabbitMQ into the
// analytics pipeline (Kafka) and the presence index (Redis GEO). It holds no
// state of its own; every message is forwarded or dropped.
type RelayService struct {
	logger   *logger.Logger
	rabbitmq *rabbitmq.Client
	producer *kafka.Producer
	presence *redisgeo.Presence
}

// NewRelayService creates the location relay with the provided dependencies.
func NewRelayService(
	logger *logger.Logger,
	rabbit *rabbitmq.Client,
	producer *kafka.Producer,
	presence *redisgeo.Presence,
) *RelayService {
	return &RelayService{
		logger:   logger,
		rabbitmq: rabbit,
		producer: producer,
		presence: presence,
	}
}

// RunBackgroundConsumers starts the relay's MQ consumers: the location
// fanout feed and the driver status feed (to clear presence on offline).
// prefetch bounds the in-flight location deliveries per channel.
func (service *RelayService) RunBackgroundConsumers(ctx context.Context, prefetch int) {
	go service.rabbitmq.Consume(ctx, contracts.QueueLocationRelay, "location-relay-locations", prefetch,
		service.handleLocationDelivery)
	go service.rabbitmq.Consume(ctx, contracts.QueueDriverStatus, "location-relay-status", 10,
		service.handleDriverStatusDelivery)

	service.logger.Info(ctx, "mq_consumers_started", "Location relay MQ consumers started",
		map[string]any{"queues": []string{contracts.QueueLocationRelay, contracts.QueueDriverStatus}})
}

// handleLocationDelivery forwards one location update to Kafka and mirrors
// it into the Redis presence index.
func (service *RelayService) handleLocationDelivery(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.LocationUpdateMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		service.logger.Error(ctx, "mq_message_parse_failed", "Failed to parse location update", err, nil)
		return err
	}
	if msg.DriverID == "" {
		return nil // nothing to key on; drop silently
	}

	if err := service.producer.PublishLocation(ctx, msg); err != nil {
		service.logger.Error(ctx, "kafka_publish_failed", "Failed to forward location to Kafka", err,
			map[string]any{"driver_id": msg.DriverID})
		return err
	}
	observability.LocationsRelayed.Inc()

	// presence is best-effort: a miss only leaves the GEO index briefly stale
	if err := service.presence.Upsert(ctx, msg); err != nil {
		service.logger.Error(ctx, "presence_upsert_failed", "Failed to update Redis presence", err,
			map[string]any{"driver_id": msg.DriverID})
	}

	return nil
}

// handleDriverStatusDelivery clears the presence index when a driver goes
// offline so stale positions never feed the dispatcher.
func (service *RelayService) handleDriverStatusDelivery(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.DriverStatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		service.logger.Error(ctx, "mq_message_parse_failed", "Failed to parse driver status", err, nil)
		return err
	}

	if msg.Status != driver.AvailabilityOffline.String() {
		return nil
	}

	if err := service.presence.Remove(ctx, msg.DriverID); err != nil {
		service.logger.Error(ctx, "presence_remove_failed", "Failed to clear Redis presence", err,
			map[string]any{"driver_id": msg.DriverID})
		return err
	}

	service.logger.Info(ctx, "presence_cleared", "Driver removed from presence index",
		map[string]any{"driver_id": msg.DriverID})
	return nil
}
