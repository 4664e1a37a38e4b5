package messaging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	data := ReportEmailRequestedEvent{
		Kind:       ReportKindDaily,
		EmployeeID: "E001",
		To:         []string{"hr@company.com"},
		Subject:    "Daily Time Report - Asha (Wednesday, January 10, 2024)",
	}

	event, err := NewEvent(EventReportEmailRequested, "timesheet-service", "req-1", data)
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventReportEmailRequested, event.Type)
	assert.Equal(t, "timesheet-service", event.Source)
	assert.Equal(t, "req-1", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())

	var got ReportEmailRequestedEvent
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent(EventReportSubmitted, "timesheet-service", "", make(chan int))
	assert.Error(t, err)
}
