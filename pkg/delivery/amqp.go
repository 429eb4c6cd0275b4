package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"notification-hub/relay/pkg/domain"
)

const amqpMessageType = "mail.queued"

// amqpPublisher is the part of *amqp.Channel the relay uses.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DialAMQP connects to the broker and declares a durable topic exchange.
// The caller owns and closes the returned connection.
func DialAMQP(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	if url == "" || exchange == "" {
		return nil, nil, ErrIncomplete
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

// AMQP publishes the mail document as a persistent message.
type AMQP struct {
	Channel    amqpPublisher
	Exchange   string
	RoutingKey string

	mu sync.Mutex // one publisher per channel
}

func (a *AMQP) Name() string { return "amqp" }

func (a *AMQP) Deliver(ctx context.Context, env domain.Envelope) error {
	if a.Channel == nil || a.Exchange == "" || len(env.Recipients) == 0 {
		return ErrIncomplete
	}
	doc := stamped(NewQueuedMail(env))
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal mail document: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Channel.PublishWithContext(ctx, a.Exchange, a.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    doc.ID,
		Type:         amqpMessageType,
		Timestamp:    doc.CreatedAt,
		AppId:        "notification-relay",
	})
}
