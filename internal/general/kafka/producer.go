package kafka

import (
	"context"
	"encoding/json"
	"time"

	"seryvo/internal/general/contracts"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer forwards driver location updates to the analytics topic.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer builds a writer keyed by driver ID so per-driver ordering holds.
func NewProducer(brokers []string, topic string) *Producer {
	w := kafkago.NewWriter(kafkago.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	})
	return &Producer{writer: w}
}

// PublishLocation writes one location update, keyed by driver ID.
func (p *Producer) PublishLocation(ctx context.Context, msg contracts.LocationUpdateMessage) error {
	wCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(wCtx, kafkago.Message{
		Key:   []byte(msg.DriverID),
		Value: b,
	})
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
