// Package amqp publishes operation outcome events to a RabbitMQ topic
// exchange. Routing keys have the form "<entity>.<action>".
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/fkhayef/chama/internal/notification"
)

const publishTimeout = 5 * time.Second

// Client publishes events over a single channel
type Client struct {
	conn         *amqp091.Connection
	exchangeName string

	// amqp091 channels must not be used for concurrent publishing
	mu      sync.Mutex
	channel *amqp091.Channel
}

var _ notification.Publisher = (*Client)(nil)

// NewClient dials url and declares the exchange
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

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Publish sends e to the exchange with its routing key
func (c *Client) Publish(ctx context.Context, e notification.Event) error {
	msg, err := newPublishing(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		e.RoutingKey(), // routing key
		false,          // mandatory
		false,          // immediate
		msg,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "Published event",
		"exchange", c.exchangeName,
		"routing_key", e.RoutingKey(),
		"message_id", msg.MessageId)
	return nil
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
