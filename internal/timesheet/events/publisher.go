package events

import (
	"context"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
)

// Publisher is the subset of messaging.Publisher used here
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// TimesheetEventPublisher publishes timesheet domain events. Publishing is
// best effort: failures are logged and never fail the request. A nil
// *TimesheetEventPublisher publishes nothing.
type TimesheetEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewTimesheetEventPublisher creates a new timesheet event publisher
func NewTimesheetEventPublisher(publisher Publisher, log *logger.Logger) *TimesheetEventPublisher {
	return &TimesheetEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishReportSubmitted publishes a report submitted event
func (p *TimesheetEventPublisher) PublishReportSubmitted(ctx context.Context, report *domain.DailyReport, totalMinutes int) {
	if p == nil {
		return
	}

	data := messaging.ReportSubmittedEvent{
		ReportID:     report.ID,
		EmployeeID:   report.EmployeeID,
		ReportDate:   report.ReportDate,
		EntryCount:   len(report.Entries),
		TotalMinutes: totalMinutes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReportSubmitted, data); err != nil {
		p.logger.Error().Err(err).Str("report_id", report.ID).Msg("failed to publish report submitted event")
	}
}

// PublishEmployeeCreated publishes an employee created event
func (p *TimesheetEventPublisher) PublishEmployeeCreated(ctx context.Context, emp *domain.Employee) {
	if p == nil {
		return
	}

	data := messaging.EmployeeCreatedEvent{
		EmployeeID:   emp.EmployeeID,
		EmployeeName: emp.EmployeeName,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeCreated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", emp.EmployeeID).Msg("failed to publish employee created event")
	}
}

// PublishEmployeeDeleted publishes an employee deleted event
func (p *TimesheetEventPublisher) PublishEmployeeDeleted(ctx context.Context, employeeID string) {
	if p == nil {
		return
	}

	data := messaging.EmployeeDeletedEvent{EmployeeID: employeeID}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Msg("failed to publish employee deleted event")
	}
}

// PublishProjectDeleted publishes a project deleted event
func (p *TimesheetEventPublisher) PublishProjectDeleted(ctx context.Context, project *domain.ProjectMeta, entriesRemoved int64) {
	if p == nil {
		return
	}

	data := messaging.ProjectDeletedEvent{
		ProjectID:      project.ID,
		EmployeeID:     project.EmployeeID,
		ProjectName:    project.ProjectName,
		EntriesRemoved: entriesRemoved,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProjectDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("project_id", project.ID).Msg("failed to publish project deleted event")
	}
}
