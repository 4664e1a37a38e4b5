package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Report events
	EventReportSubmitted      = "timesheet.report.submitted"
	EventReportEmailRequested = "timesheet.report.email_requested"

	// Employee events
	EventEmployeeCreated = "timesheet.employee.created"
	EventEmployeeDeleted = "timesheet.employee.deleted"

	// Project events
	EventProjectDeleted = "timesheet.project.deleted"
)

// Exchange names
const (
	ExchangeTimesheetEvents = "timesheet.events"
)

// Queue names
const (
	QueueReportEmails = "mail-worker.report-emails"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Report Events

// ReportSubmittedEvent is published after a daily report is stored
type ReportSubmittedEvent struct {
	ReportID     string `json:"report_id"`
	EmployeeID   string `json:"employee_id"`
	ReportDate   string `json:"report_date"`
	EntryCount   int    `json:"entry_count"`
	TotalMinutes int    `json:"total_minutes"`
}

// Report kinds carried by ReportEmailRequestedEvent
const (
	ReportKindDaily   = "daily"
	ReportKindMonthly = "monthly"
)

// ReportEmailRequestedEvent carries a fully rendered report email for the mail worker
type ReportEmailRequestedEvent struct {
	Kind       string   `json:"kind"`
	EmployeeID string   `json:"employee_id"`
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Text       string   `json:"text"`
}

// Employee Events

// EmployeeCreatedEvent is published when an employee is created
type EmployeeCreatedEvent struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

// EmployeeDeletedEvent is published when an employee is deleted
type EmployeeDeletedEvent struct {
	EmployeeID string `json:"employee_id"`
}

// Project Events

// ProjectDeletedEvent is published when a project and its entries are removed
type ProjectDeletedEvent struct {
	ProjectID      string `json:"project_id"`
	EmployeeID     string `json:"employee_id"`
	ProjectName    string `json:"project_name"`
	EntriesRemoved int64  `json:"entries_removed"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
