package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
)

// Publisher writes one keyed record to a topic. Satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// StreamRecord is the wire format of a notification on the event stream.
type StreamRecord struct {
	ID        id.NotificationID `json:"id"`
	UserID    id.UserID         `json:"user_id"`
	Type      models.Type       `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IssueID   *id.IssueID       `json:"issue_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// EventStreamChannel publishes every notification to a Kafka topic keyed by
// recipient, so one user's notifications stay ordered within a partition.
type EventStreamChannel struct {
	publisher Publisher
	topic     string
}

func NewEventStream(publisher Publisher, topic string) *EventStreamChannel {
	return &EventStreamChannel{publisher: publisher, topic: topic}
}

func (c *EventStreamChannel) Name() string { return "event_stream" }

func (c *EventStreamChannel) Deliver(ctx context.Context, n *models.Notification) error {
	value, err := json.Marshal(StreamRecord{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IssueID:   n.IssueID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return c.publisher.Publish(ctx, c.topic, []byte(n.UserID.String()), value)
}
