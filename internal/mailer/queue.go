package mailer

import (
	"context"
	"fmt"

	"github.com/senseprojects/timesheet-backend/pkg/messaging"
)

// EventPublisher publishes a single event
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// QueueDelivery hands rendered messages to the mail worker
type QueueDelivery struct {
	publisher EventPublisher
}

// NewQueueDelivery creates a delivery that publishes email requests
func NewQueueDelivery(publisher EventPublisher) *QueueDelivery {
	return &QueueDelivery{publisher: publisher}
}

// Deliver publishes msg as a report email request. A nil error means the
// broker accepted the event, not that the mail was sent.
func (q *QueueDelivery) Deliver(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	data := messaging.ReportEmailRequestedEvent{
		Kind:       msg.Kind,
		EmployeeID: msg.EmployeeID,
		To:         msg.To,
		Subject:    msg.Subject,
		HTML:       msg.HTML,
		Text:       msg.Text,
	}
	if err := q.publisher.Publish(ctx, messaging.EventReportEmailRequested, data); err != nil {
		return fmt.Errorf("failed to queue report email: %w", err)
	}
	return nil
}

// FromEvent rebuilds a message from a queued email request
func FromEvent(e messaging.ReportEmailRequestedEvent) *Message {
	return &Message{
		Kind:       e.Kind,
		EmployeeID: e.EmployeeID,
		To:         e.To,
		Subject:    e.Subject,
		HTML:       e.HTML,
		Text:       e.Text,
	}
}
