package consumers

import (
	"context"
	"fmt"

	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
)

// ServiceName names the worker's queue and dead letter queue
const ServiceName = "mail-worker"

// EmailHandler sends queued report emails (testable without RabbitMQ)
type EmailHandler struct {
	delivery mailer.Delivery
	logger   *logger.Logger
}

// NewEmailHandler creates a handler that sends through delivery
func NewEmailHandler(delivery mailer.Delivery, log *logger.Logger) *EmailHandler {
	return &EmailHandler{
		delivery: delivery,
		logger:   log,
	}
}

// HandleEvent processes a report email request. Malformed requests are
// permanent failures; SMTP errors are returned for retry.
func (h *EmailHandler) HandleEvent(ctx context.Context, event *messaging.Event) error {
	var data messaging.ReportEmailRequestedEvent
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to unmarshal ReportEmailRequestedEvent")
		return messaging.Permanent(err)
	}

	if len(data.To) == 0 {
		h.logger.Warn().
			Str("event_id", event.ID).
			Str("employee_id", data.EmployeeID).
			Msg("report email has no recipients, dropping")
		return messaging.Permanent(fmt.Errorf("report email %s has no recipients", event.ID))
	}
	if data.Subject == "" || (data.HTML == "" && data.Text == "") {
		return messaging.Permanent(fmt.Errorf("report email %s has no content", event.ID))
	}

	log := h.logger.WithCorrelationID(event.CorrelationID).WithEmployee(data.EmployeeID)

	if err := h.delivery.Deliver(ctx, mailer.FromEvent(data)); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("kind", data.Kind).
			Msg("failed to send report email")
		return err
	}

	log.Info().
		Str("event_id", event.ID).
		Str("kind", data.Kind).
		Int("recipients", len(data.To)).
		Msg("report email sent")

	return nil
}

// EmailConsumer consumes report email requests from the timesheet service
type EmailConsumer struct {
	consumer *messaging.Consumer
	handler  *EmailHandler
	logger   *logger.Logger
}

// NewEmailConsumer declares the worker's queues and registers the handler
func NewEmailConsumer(rmq *messaging.RabbitMQ, maxRetries int, delivery mailer.Delivery, log *logger.Logger) (*EmailConsumer, error) {
	if err := rmq.DeclareDeadLetterQueue(ServiceName); err != nil {
		return nil, err
	}

	consumer, err := messaging.NewConsumer(rmq, messaging.QueueReportEmails, maxRetries, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeTimesheetEvents, messaging.EventReportEmailRequested); err != nil {
		return nil, err
	}

	handler := NewEmailHandler(delivery, log)
	consumer.RegisterHandler(messaging.EventReportEmailRequested, handler.HandleEvent)

	return &EmailConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   log,
	}, nil
}

// Start starts consuming messages
func (c *EmailConsumer) Start(ctx context.Context) (<-chan struct{}, error) {
	return c.consumer.Start(ctx)
}
