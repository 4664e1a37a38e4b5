// Package report assembles the daily and monthly summaries consumed by the
// HTTP API, the mail templates and the CLI. It performs no I/O.
package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/aggregate"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
)

// ErrInvalidRange is returned by DateRange.Validate
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an optional, inclusive report window
type DateRange struct {
	From string `json:"from_date,omitempty"`
	To   string `json:"to_date,omitempty"`
}

// Label renders the range for report headings and email subjects.
func (r DateRange) Label() string {
	switch {
	case r.From != "" && r.To != "":
		return fmt.Sprintf("from %s to %s", r.From, r.To)
	case r.From != "":
		return fmt.Sprintf("from %s onwards", r.From)
	case r.To != "":
		return fmt.Sprintf("up to %s", r.To)
	default:
		return "All Time"
	}
}

// Validate checks that the given bounds are dates and that To is not before From.
func (r DateRange) Validate() error {
	if r.From != "" {
		if _, err := timecalc.ParseDate(r.From); err != nil {
			return fmt.Errorf("%w: from_date: %v", ErrInvalidRange, err)
		}
	}
	if r.To != "" {
		if _, err := timecalc.ParseDate(r.To); err != nil {
			return fmt.Errorf("%w: to_date: %v", ErrInvalidRange, err)
		}
	}
	if r.From != "" && r.To != "" && r.To < r.From {
		return fmt.Errorf("%w: to date cannot be before from date", ErrInvalidRange)
	}
	return nil
}

// DailyStats summarises the entries of one day
type DailyStats struct {
	Count          int `json:"count"`
	TotalMinutes   int `json:"total_minutes"`
	AverageMinutes int `json:"average_minutes"`
}

// DailySummary is the content of a daily report email
type DailySummary struct {
	EmployeeName string             `json:"employee_name"`
	Date         string             `json:"date"`
	Entries      []domain.TimeEntry `json:"entries"`
	Stats        DailyStats         `json:"stats"`
}

// BuildDailySummary orders the entries by start time and computes the day's
// totals. The caller's slice is left untouched.
func BuildDailySummary(entries []domain.TimeEntry, employeeName, date string) DailySummary {
	sorted := make([]domain.TimeEntry, len(entries))
	copy(sorted, entries)
	// HH:MM is fixed width, so string order is time order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	total := 0
	for _, e := range sorted {
		total += e.Minutes()
	}

	return DailySummary{
		EmployeeName: employeeName,
		Date:         date,
		Entries:      sorted,
		Stats: DailyStats{
			Count:          len(sorted),
			TotalMinutes:   total,
			AverageMinutes: timecalc.RoundHalfUp(total, len(sorted)),
		},
	}
}

// MonthlyStats is the statistics block of a monthly summary
type MonthlyStats struct {
	TotalReports             int `json:"total_reports"`
	TotalEntries             int `json:"total_entries"`
	TotalProjects            int `json:"total_projects"`
	TotalMinutes             int `json:"total_minutes"`
	AverageMinutesPerProject int `json:"average_minutes_per_project"`
}

// MonthlySummary aggregates many daily reports over a date range
type MonthlySummary struct {
	EmployeeID     string                   `json:"employee_id,omitempty"`
	EmployeeName   string                   `json:"employee_name,omitempty"`
	Reports        []domain.DailyReport     `json:"reports"`
	PerDay         []aggregate.DayTotal     `json:"per_day"`
	PerProject     []aggregate.ProjectTotal `json:"per_project"`
	Stats          MonthlyStats             `json:"stats"`
	DateRange      DateRange                `json:"date_range"`
	DateRangeLabel string                   `json:"date_range_label"`
	Anomalies      []aggregate.Anomaly      `json:"anomalies,omitempty"`
}

// BuildMonthlySummary combines the aggregator views of reports with the
// range label. Reports keep the order they were given in.
func BuildMonthlySummary(reports []domain.DailyReport, meta []domain.ProjectMeta, dr DateRange) MonthlySummary {
	if reports == nil {
		reports = []domain.DailyReport{}
	}
	perProject := aggregate.PerProjectTotals(reports, meta)

	s := MonthlySummary{
		Reports:    reports,
		PerDay:     aggregate.PerDayTotals(reports),
		PerProject: perProject,
		Stats: MonthlyStats{
			TotalReports:             len(reports),
			TotalEntries:             aggregate.TotalEntries(reports),
			TotalProjects:            len(perProject),
			TotalMinutes:             aggregate.TotalMinutes(reports),
			AverageMinutesPerProject: aggregate.AverageMinutesPerProject(perProject),
		},
		DateRange:      dr,
		DateRangeLabel: dr.Label(),
		Anomalies:      aggregate.Anomalies(reports),
	}

	if len(reports) > 0 {
		s.EmployeeID = reports[0].EmployeeID
		s.EmployeeName = reports[0].EmployeeName
	}

	return s
}
