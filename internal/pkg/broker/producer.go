// Package broker publishes domain events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const batchTimeout = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON events to a single topic. A nil Producer is valid and drops everything.
type Producer struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewProducer returns nil when no brokers are configured
func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		logger.Info().Msg("Kafka brokers not configured - activity events will not be published")
		return nil
	}

	return &Producer{
		writer: newWriter(brokers, topic),
		topic:  topic,
		logger: logger,
	}
}

// newWriter builds a synchronous writer that flushes a batch after batchTimeout
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

// PublishMessage writes one raw message
func (p *Producer) PublishMessage(ctx context.Context, key, value []byte) error {
	if p == nil || p.writer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

// PublishJSON marshals event and publishes it under key
func (p *Producer) PublishJSON(ctx context.Context, key string, event interface{}) error {
	if p == nil {
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.PublishMessage(ctx, []byte(key), value); err != nil {
		p.logger.Warn().Err(err).Str("topic", p.topic).Str("key", key).Msg("Failed to publish event")
		return err
	}
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
