package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// PipelineHandler decodes messages into PipelineEvent. Undecodable messages
// are logged and skipped so one bad record cannot stall the group.
func PipelineHandler(fn func(context.Context, PipelineEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event PipelineEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("[kafka] skip malformed message offset=%d: %v", msg.Offset, err)
			return nil
		}
		if event.Type == "" {
			log.Printf("[kafka] skip message without type offset=%d", msg.Offset)
			return nil
		}
		return fn(ctx, event)
	}
}

// IsClosed reports whether err only signals a shutdown of the consumer.
func IsClosed(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
