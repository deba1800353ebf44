package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "woodpantry.topic"
	RoutingKey   = "pickle.checked"
)

// PickleChecked is the payload published after every check, answered or not.
type PickleChecked struct {
	CheckID   uuid.UUID `json:"check_id"`
	Item      string    `json:"item"`
	CanPickle bool      `json:"can_pickle"`
	Reason    string    `json:"reason"`
	Outcome   string    `json:"outcome"`
	Timestamp string    `json:"timestamp"`
}

// PickleCheckedPublisher publishes pickle.checked events.
type PickleCheckedPublisher struct {
	conn *amqp.Connection
}

// NewPickleCheckedPublisher creates a RabbitMQ publisher and ensures the
// shared topic exchange exists.
func NewPickleCheckedPublisher(rabbitmqURL string) (*PickleCheckedPublisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", ExchangeName, err)
	}

	return &PickleCheckedPublisher{conn: conn}, nil
}

// PublishPickleChecked publishes event. A zero Timestamp is filled in.
func (p *PickleCheckedPublisher) PublishPickleChecked(ctx context.Context, event PickleChecked) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	now := time.Now().UTC()
	if event.Timestamp == "" {
		event.Timestamp = now.Format(time.RFC3339)
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal pickle.checked event: %w", err)
	}

	if err := ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.CheckID.String(),
		Timestamp:    now,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish pickle.checked: %w", err)
	}

	return nil
}

// Close closes the RabbitMQ connection.
func (p *PickleCheckedPublisher) Close() error {
	return p.conn.Close()
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPickleChecked(context.Context, PickleChecked) error { return nil }
