package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"stock-inventory/internal/products"
	"stock-inventory/internal/products/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerTag   = "notifications-service"
	prefetchCount = 1
)

// EventHandler reacts to a decoded product change event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event products.ProductEvent) error
}

type Consumer struct {
	channel *amqp.Channel
	queue   string
	handler EventHandler
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := messaging.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		handler: handler,
		logger:  logger,
	}, nil
}

// Listen consumes events one at a time until ctx is cancelled or the
// delivery channel closes.
func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.process(ctx, msg.Body, msg.Ack, msg.Nack)
		}
	}
}

func (c *Consumer) process(ctx context.Context, body []byte, ack func(multiple bool) error, nack func(multiple, requeue bool) error) {
	event, err := decodeEvent(body)
	if err != nil {
		c.logger.Error("drop malformed event", "error", err)
		_ = nack(false, false)
		return
	}

	c.logger.Info("product event",
		"event_type", event.EventType,
		"product_id", event.ProductID,
		"name", event.Name,
		"timestamp", event.Timestamp,
	)

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		c.logger.Error("handle event failed",
			"event_type", event.EventType,
			"product_id", event.ProductID,
			"error", err,
		)
		_ = nack(false, true)
		return
	}

	_ = ack(false)
}

func decodeEvent(body []byte) (products.ProductEvent, error) {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return products.ProductEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
