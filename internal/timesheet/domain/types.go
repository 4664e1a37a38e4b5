package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Valid reports whether s is a known status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusCompleted:
		return true
	}
	return false
}

// ErrEndNotAfterStart is returned for entries whose end is not strictly after their start
var ErrEndNotAfterStart = errors.New("end time must be after start time")

// TimeEntry is one project/time-range/description line of a daily report
type TimeEntry struct {
	ID          string  `db:"id" json:"id,omitempty"`
	ReportID    string  `db:"report_id" json:"report_id,omitempty"`
	ProjectID   *string `db:"project_id" json:"project_id,omitempty"`
	ProjectName string  `db:"project_name" json:"project_name"`
	StartTime   string  `db:"start_time" json:"start_time"`
	EndTime     string  `db:"end_time" json:"end_time"`
	Description string  `db:"task_description" json:"description"`
}

// Minutes returns the entry duration; malformed or inverted entries count as 0.
func (e TimeEntry) Minutes() int {
	m, err := timecalc.DurationMinutes(e.StartTime, e.EndTime)
	if err != nil || m <= 0 {
		return 0
	}
	return m
}

// GroupKey is the name used to group entries of the same project
func (e TimeEntry) GroupKey() string {
	return strings.TrimSpace(e.ProjectName)
}

// Validate rejects malformed clocks and entries that do not end after they start.
func (e TimeEntry) Validate() error {
	m, err := timecalc.DurationMinutes(e.StartTime, e.EndTime)
	if err != nil {
		return err
	}
	if m <= 0 {
		return fmt.Errorf("%w: %s-%s", ErrEndNotAfterStart, e.StartTime, e.EndTime)
	}
	return nil
}

// DailyReport is the set of entries an employee submitted for one date
type DailyReport struct {
	ID           string      `db:"id" json:"id"`
	EmployeeID   string      `db:"employee_id" json:"employee_id"`
	EmployeeName string      `db:"employee_name" json:"employee_name"`
	ReportDate   string      `db:"report_date" json:"report_date"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	Entries      []TimeEntry `db:"-" json:"entries"`
}

// Employee is a person who submits reports
type Employee struct {
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	EmployeeName string    `db:"employee_name" json:"employee_name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProjectMeta is the planning data kept for a project
type ProjectMeta struct {
	ID          string        `db:"id" json:"id"`
	EmployeeID  string        `db:"employee_id" json:"employee_id"`
	ProjectName string        `db:"project_name" json:"project_name"`
	StartDate   *string       `db:"start_date" json:"start_date,omitempty"`
	EndDate     *string       `db:"end_date" json:"end_date,omitempty"`
	Status      ProjectStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}
