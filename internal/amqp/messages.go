package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/fkhayef/chama/internal/notification"
)

// EventMessage is the JSON body of a published event
type EventMessage struct {
	Entity      string    `json:"entity"`
	Action      string    `json:"action"`
	EntityID    int64     `json:"entity_id,omitempty"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	RecipientID int64     `json:"recipient_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEventMessage converts an event to its wire form
func NewEventMessage(e notification.Event) *EventMessage {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return &EventMessage{
		Entity:      string(e.Entity),
		Action:      string(e.Action),
		EntityID:    e.EntityID,
		Success:     e.Success,
		Message:     e.Message,
		RecipientID: e.RecipientID,
		OccurredAt:  occurred.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventMessageFromJSON parses a message body
func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func newPublishing(e notification.Event) (amqp091.Publishing, error) {
	msg := NewEventMessage(e)
	body, err := msg.ToJSON()
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    msg.OccurredAt,
		Type:         e.RoutingKey(),
		Body:         body,
	}, nil
}
