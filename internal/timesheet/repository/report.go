package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/pkg/database"
)

// ReportRepository handles daily reports and their time entries
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateWithEntries stores a daily report and all of its entries atomically.
// IDs are assigned to the report and to every entry.
func (r *ReportRepository) CreateWithEntries(ctx context.Context, report *domain.DailyReport) error {
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := insertDailyReport(ctx, tx, report); err != nil {
			return err
		}
		return insertProjectEntries(ctx, tx, report.ID, report.Entries)
	})
	if err != nil {
		return mapError("save daily report", err)
	}
	return nil
}

func insertDailyReport(ctx context.Context, tx *sqlx.Tx, report *domain.DailyReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	query := `
		INSERT INTO daily_reports (id, employee_id, employee_name, report_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return tx.QueryRowxContext(ctx, query,
		report.ID, report.EmployeeID, report.EmployeeName, report.ReportDate,
	).Scan(&report.CreatedAt)
}

func insertProjectEntries(ctx context.Context, tx *sqlx.Tx, reportID string, entries []domain.TimeEntry) error {
	query := `
		INSERT INTO daily_report_projects (id, report_id, project_id, project_name, start_time, end_time, task_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.ReportID = reportID

		if _, err := tx.ExecContext(ctx, query,
			e.ID, reportID, e.ProjectID, e.ProjectName, e.StartTime, e.EndTime, e.Description,
		); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return nil
}

// ListInRange returns the employee's reports newest first, each with its
// entries ordered by start time. Empty bounds are open.
func (r *ReportRepository) ListInRange(ctx context.Context, employeeID, fromDate, toDate string) ([]domain.DailyReport, error) {
	conditions := []string{"employee_id = $1"}
	args := []interface{}{employeeID}

	if fromDate != "" {
		args = append(args, fromDate)
		conditions = append(conditions, fmt.Sprintf("report_date >= $%d", len(args)))
	}
	if toDate != "" {
		args = append(args, toDate)
		conditions = append(conditions, fmt.Sprintf("report_date <= $%d", len(args)))
	}

	query := `
		SELECT id, employee_id, employee_name,
		       to_char(report_date, 'YYYY-MM-DD') AS report_date, created_at
		FROM daily_reports
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY report_date DESC`

	reports := []domain.DailyReport{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, mapError("list reports", err)
	}
	if len(reports) == 0 {
		return reports, nil
	}

	if err := r.attachEntries(ctx, reports); err != nil {
		return nil, mapError("list report entries", err)
	}
	return reports, nil
}

func (r *ReportRepository) attachEntries(ctx context.Context, reports []domain.DailyReport) error {
	ids := make([]string, len(reports))
	index := make(map[string]int, len(reports))
	for i, rep := range reports {
		ids[i] = rep.ID
		index[rep.ID] = i
		reports[i].Entries = []domain.TimeEntry{}
	}

	query := `
		SELECT id, report_id, project_id, project_name, start_time, end_time, task_description
		FROM daily_report_projects
		WHERE report_id = ANY($1::uuid[])
		ORDER BY start_time ASC, id ASC
	`

	var entries []domain.TimeEntry
	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(ids)); err != nil {
		return err
	}

	for _, e := range entries {
		if i, ok := index[e.ReportID]; ok {
			reports[i].Entries = append(reports[i].Entries, e)
		}
	}
	return nil
}
