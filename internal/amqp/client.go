package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

const publishTimeout = 5 * time.Second

// Client publishes invalidation events to a fanout exchange so every
// connected client of a family can refresh.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
}

func NewClient(url, exchangeName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}, nil
}

// Publish implements notify.Publisher.
func (c *Client) Publish(ctx context.Context, inv notify.Invalidation) error {
	body, err := inv.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,  // exchange
		routingKey(inv), // routing key, ignored by fanout but useful when rebinding
		false,           // mandatory
		false,           // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    inv.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}

	slog.DebugContext(ctx, "published invalidation",
		"family_id", inv.FamilyID,
		"scope", inv.Scope,
		"exchange", c.exchangeName)

	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

func routingKey(inv notify.Invalidation) string {
	return fmt.Sprintf("%s.%s", inv.FamilyID, inv.Scope)
}
