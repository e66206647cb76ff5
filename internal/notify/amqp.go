package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel used for publishing.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes messages as JSON to a topic exchange. The routing key is
// "notify." followed by the event name.
type AMQPSender struct {
	publisher Publisher
	exchange  string
}

// NewAMQPSender opens a channel on conn and declares a durable topic exchange.
func NewAMQPSender(conn *amqp.Connection, exchange string) (*AMQPSender, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	return NewAMQPSenderWithPublisher(ch, exchange), nil
}

// NewAMQPSenderWithPublisher creates a sender over an existing publisher.
func NewAMQPSenderWithPublisher(p Publisher, exchange string) *AMQPSender {
	return &AMQPSender{publisher: p, exchange: exchange}
}

// RoutingKey returns the routing key used for event.
func RoutingKey(event Event) string {
	return "notify." + string(event)
}

// Send implements Sender.
func (s *AMQPSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	return s.publisher.PublishWithContext(ctx,
		s.exchange,
		RoutingKey(msg.Event),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
