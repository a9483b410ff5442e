package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/credverse/credential-portal/shared/contracts"
)

// RabbitMQConfig holds the configuration for RabbitMQ
type RabbitMQConfig struct {
	RabbitMQHost     string `json:"rabbitmq_host"`
	RabbitMQPort     int    `json:"rabbitmq_port"`
	RabbitMQUser     string `json:"rabbitmq_user"`
	RabbitMQPassword string `json:"rabbitmq_password"`
}

// ExchangeConfig defines exchange configuration
type ExchangeConfig struct {
	Name       string `json:"name"`
	Type       string `json:"type"` // "topic", "direct", "fanout"
	Durable    bool   `json:"durable"`
	AutoDelete bool   `json:"auto_delete"`
}

// RabbitMQ wraps the AMQP connection and provides high-level operations
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  RabbitMQConfig
	closed  bool
}

// NewRabbitMQ creates a new RabbitMQ client with configuration
func NewRabbitMQ(config RabbitMQConfig) (*RabbitMQ, error) {
	rmq := &RabbitMQ{config: config}
	if err := rmq.connect(); err != nil {
		return nil, err
	}
	return rmq, nil
}

func (r *RabbitMQ) buildURL() string {
	scheme := "amqp"
	if r.config.RabbitMQPort == 5671 {
		scheme = "amqps"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d",
		scheme,
		r.config.RabbitMQUser,
		r.config.RabbitMQPassword,
		r.config.RabbitMQHost,
		r.config.RabbitMQPort,
	)
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.DialConfig(r.buildURL(), amqp.Config{
		Heartbeat: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	r.conn = conn
	r.channel = ch
	r.closed = false

	return nil
}

// DeclareExchange declares an exchange
func (r *RabbitMQ) DeclareExchange(config ExchangeConfig) error {
	return r.channel.ExchangeDeclare(
		config.Name,
		config.Type,
		config.Durable,
		config.AutoDelete,
		false, // internal
		false, // no-wait
		nil,
	)
}

// Publish publishes a message using the contracts.AMQPMessage interface
func (r *RabbitMQ) Publish(ctx context.Context, message contracts.AMQPMessage) error {
	if r.closed {
		return fmt.Errorf("connection is closed")
	}

	headers := make(amqp.Table)
	for k, v := range message.Headers {
		headers[k] = v
	}

	return r.channel.PublishWithContext(
		ctx,
		message.Exchange,
		message.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: 2, // persistent
			Timestamp:    time.Now(),
			Body:         message.Body,
		},
	)
}

// Close closes the AMQP channel and connection
func (r *RabbitMQ) Close() error {
	r.closed = true
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// IsConnected reports whether the underlying connection is usable
func (r *RabbitMQ) IsConnected() bool {
	return !r.closed && r.conn != nil && !r.conn.IsClosed()
}
