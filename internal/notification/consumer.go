package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Consumer interface {
	Start(ctx context.Context) error
	Close() error
}

type EventHandler interface {
	HandleEvent(ctx context.Context, event TaskEvent) error
}

type kafkaConsumer struct {
	reader  *kafka.Reader
	handler EventHandler
	log     zerolog.Logger
}

func NewKafkaConsumer(brokers []string, topic, groupID string, handler EventHandler, log zerolog.Logger) Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	return &kafkaConsumer{
		reader:  reader,
		handler: handler,
		log:     log.With().Str("topic", topic).Str("group", groupID).Logger(),
	}
}

// Start reads until ctx is cancelled. Undecodable messages are logged and
// skipped.
func (c *kafkaConsumer) Start(ctx context.Context) error {
	c.log.Info().Msg("kafka consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("read message error")
			continue
		}

		event, err := decodeEvent(msg)
		if err != nil {
			c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skip undecodable task event")
			continue
		}

		if err := c.handler.HandleEvent(ctx, event); err != nil {
			c.log.Error().Err(err).Str("event_id", event.EventID).Msg("handle event error")
		}
	}
}

func (c *kafkaConsumer) Close() error {
	return c.reader.Close()
}

func decodeEvent(msg kafka.Message) (TaskEvent, error) {
	var event TaskEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return TaskEvent{}, fmt.Errorf("unmarshal task event: %w", err)
	}
	return event, nil
}
