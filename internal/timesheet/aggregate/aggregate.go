// Package aggregate folds daily reports into per-day and per-project totals.
//
// Every function is pure: inputs are never modified and the same inputs
// always produce the same output, including order. Entries whose duration is
// unparseable or not positive contribute 0 minutes but are still counted; use
// Anomalies to surface them.
package aggregate

import (
	"sort"
	"strings"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/timecalc"
)

// DayTotal is the per-report row of a monthly summary
type DayTotal struct {
	Date         string `json:"date"`
	EntryCount   int    `json:"entry_count"`
	TotalMinutes int    `json:"total_minutes"`
}

// ProjectTotal is the worked time of one project across a set of reports
type ProjectTotal struct {
	ProjectID    string               `json:"project_id,omitempty"`
	ProjectName  string               `json:"project_name"`
	TotalMinutes int                  `json:"total_minutes"`
	FirstDate    string               `json:"first_date"`
	LastDate     string               `json:"last_date"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Status       domain.ProjectStatus `json:"status"`
}

// Anomaly reasons
const (
	ReasonUnparseable = "unparseable time"
	ReasonNonPositive = "end time not after start time"
)

// Anomaly is a stored entry that could not contribute to totals
type Anomaly struct {
	ReportID    string `json:"report_id"`
	ReportDate  string `json:"report_date"`
	ProjectName string `json:"project_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Reason      string `json:"reason"`
}

// TotalMinutes sums the durations of every entry of every report.
func TotalMinutes(reports []domain.DailyReport) int {
	total := 0
	for _, r := range reports {
		total += reportMinutes(r)
	}
	return total
}

// TotalEntries counts every entry of every report, anomalies included.
func TotalEntries(reports []domain.DailyReport) int {
	n := 0
	for _, r := range reports {
		n += len(r.Entries)
	}
	return n
}

// PerDayTotals returns one row per report in the order given.
func PerDayTotals(reports []domain.DailyReport) []DayTotal {
	out := make([]DayTotal, 0, len(reports))
	for _, r := range reports {
		out = append(out, DayTotal{
			Date:         r.ReportDate,
			EntryCount:   len(r.Entries),
			TotalMinutes: reportMinutes(r),
		})
	}
	return out
}

type projectAcc struct {
	total     ProjectTotal
	projectID string
}

// PerProjectTotals groups entries by trimmed project name and sorts the
// groups by descending total, keeping first-seen order on ties.
//
// Metadata is matched by project ID when an entry of the group carries one,
// and by trimmed name otherwise. Without a match the status is active and
// the planned range is the worked range.
func PerProjectTotals(reports []domain.DailyReport, meta []domain.ProjectMeta) []ProjectTotal {
	var order []string
	groups := make(map[string]*projectAcc)

	for _, r := range reports {
		for _, e := range r.Entries {
			key := e.GroupKey()
			acc, ok := groups[key]
			if !ok {
				acc = &projectAcc{total: ProjectTotal{
					ProjectName: key,
					FirstDate:   r.ReportDate,
					LastDate:    r.ReportDate,
				}}
				groups[key] = acc
				order = append(order, key)
			}

			acc.total.TotalMinutes += e.Minutes()
			if r.ReportDate < acc.total.FirstDate {
				acc.total.FirstDate = r.ReportDate
			}
			if r.ReportDate > acc.total.LastDate {
				acc.total.LastDate = r.ReportDate
			}
			if acc.projectID == "" && e.ProjectID != nil {
				acc.projectID = *e.ProjectID
			}
		}
	}

	index := newMetaIndex(meta)

	out := make([]ProjectTotal, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		pt := acc.total
		pt.StartDate = pt.FirstDate
		pt.EndDate = pt.LastDate
		pt.Status = domain.ProjectStatusActive

		if m, ok := index.lookup(acc.projectID, key); ok {
			pt.ProjectID = m.ID
			if m.StartDate != nil && *m.StartDate != "" {
				pt.StartDate = *m.StartDate
			}
			if m.EndDate != nil && *m.EndDate != "" {
				pt.EndDate = *m.EndDate
			}
			if m.Status.Valid() {
				pt.Status = m.Status
			}
		} else {
			pt.ProjectID = acc.projectID
		}

		out = append(out, pt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalMinutes > out[j].TotalMinutes
	})

	return out
}

// AverageMinutesPerProject is the half-up rounded mean of the project totals.
func AverageMinutesPerProject(totals []ProjectTotal) int {
	sum := 0
	for _, t := range totals {
		sum += t.TotalMinutes
	}
	return timecalc.RoundHalfUp(sum, len(totals))
}

// Anomalies lists every entry that contributed 0 minutes because its times
// are malformed or inverted.
func Anomalies(reports []domain.DailyReport) []Anomaly {
	var out []Anomaly
	for _, r := range reports {
		for _, e := range r.Entries {
			m, err := timecalc.DurationMinutes(e.StartTime, e.EndTime)
			reason := ""
			switch {
			case err != nil:
				reason = ReasonUnparseable
			case m <= 0:
				reason = ReasonNonPositive
			default:
				continue
			}
			out = append(out, Anomaly{
				ReportID:    r.ID,
				ReportDate:  r.ReportDate,
				ProjectName: e.ProjectName,
				StartTime:   e.StartTime,
				EndTime:     e.EndTime,
				Reason:      reason,
			})
		}
	}
	return out
}

func reportMinutes(r domain.DailyReport) int {
	total := 0
	for _, e := range r.Entries {
		total += e.Minutes()
	}
	return total
}

// metaIndex resolves project metadata by ID first and trimmed name second.
// The name path exists for entries stored before project IDs were recorded.
type metaIndex struct {
	byID   map[string]domain.ProjectMeta
	byName map[string]domain.ProjectMeta
}

func newMetaIndex(meta []domain.ProjectMeta) metaIndex {
	idx := metaIndex{
		byID:   make(map[string]domain.ProjectMeta, len(meta)),
		byName: make(map[string]domain.ProjectMeta, len(meta)),
	}
	for _, m := range meta {
		if m.ID != "" {
			idx.byID[m.ID] = m
		}
		name := strings.TrimSpace(m.ProjectName)
		if _, seen := idx.byName[name]; !seen {
			idx.byName[name] = m
		}
	}
	return idx
}

func (idx metaIndex) lookup(projectID, name string) (domain.ProjectMeta, bool) {
	if projectID != "" {
		if m, ok := idx.byID[projectID]; ok {
			return m, true
		}
	}
	m, ok := idx.byName[name]
	return m, ok
}
