// Package events publishes complaint lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	ComplaintCreated       = "complaint.created"
	ComplaintUpdated       = "complaint.updated"
	ComplaintDeleted       = "complaint.deleted"
	ComplaintStatusChanged = "complaint.status_changed"
	ComplaintImageAttached = "complaint.image_attached"
	VoteChanged            = "vote.changed"
)

// Publisher is implemented by the Kafka producer and by test doubles.
type Publisher interface {
	Publish(ctx context.Context, event string, ticketID uuid.UUID, payload map[string]any)
}

type Event struct {
	Event      string         `json:"event"`
	TicketID   uuid.UUID      `json:"ticket_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Producer writes best-effort; with no brokers configured it does nothing.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
		},
	}
}

func (p *Producer) Enabled() bool {
	return p.writer != nil
}

func (p *Producer) Publish(ctx context.Context, event string, ticketID uuid.UUID, payload map[string]any) {
	if p.writer == nil {
		return
	}
	body, err := json.Marshal(Event{
		Event:      event,
		TicketID:   ticketID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		log.Printf("[Kafka]: marshal %s event: %v", event, err)
		return
	}
	msg := kafka.Message{Key: []byte(ticketID.String()), Value: body}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[Kafka]: write %s event: %v", event, err)
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
