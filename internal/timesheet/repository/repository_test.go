package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/repository"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
	"github.com/senseprojects/timesheet-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectCols = []string{"id", "employee_id", "project_name", "start_date", "end_date", "status", "created_at", "updated_at"}

// ============================================================================
// EMPLOYEE REPOSITORY
// ============================================================================

func TestEmployeeRepository_GetByID_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`FROM employees WHERE employee_id = $1`).
		WithArgs("E404").
		WillReturnError(sql.ErrNoRows)

	repo := repository.NewEmployeeRepository(mockDB.DB)
	_, err := repo.GetByID(context.Background(), "E404")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_Create_DuplicateIsConflict(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`INSERT INTO employees`).
		WithArgs("E1", "Asha", nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "employees_pkey"})

	repo := repository.NewEmployeeRepository(mockDB.DB)
	err := repo.Create(context.Background(), &domain.Employee{EmployeeID: "E1", EmployeeName: "Asha"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_Create_SetsCreatedAt(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mockDB.ExpectQuery(`INSERT INTO employees`).
		WithArgs("E1", "Asha", "asha@example.com").
		WillReturnRows(testutil.MockRows("created_at").AddRow(created))

	repo := repository.NewEmployeeRepository(mockDB.DB)
	emp := &domain.Employee{EmployeeID: "E1", EmployeeName: "Asha", Email: testutil.PtrString("asha@example.com")}
	require.NoError(t, repo.Create(context.Background(), emp))

	assert.Equal(t, created, emp.CreatedAt)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeRepository_Delete(t *testing.T) {
	t.Run("missing employee is not found", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.ExpectExec(`DELETE FROM employees WHERE employee_id = $1`).
			WithArgs("E9").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repository.NewEmployeeRepository(mockDB.DB).Delete(context.Background(), "E9")
		assert.True(t, errors.Is(err, errors.ErrNotFound))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("existing employee", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.ExpectExec(`DELETE FROM employees WHERE employee_id = $1`).
			WithArgs("E1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repository.NewEmployeeRepository(mockDB.DB).Delete(context.Background(), "E1")
		assert.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})
}

func TestEmployeeRepository_List_StorageError(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`FROM employees ORDER BY`).WillReturnError(sql.ErrConnDone)

	_, err := repository.NewEmployeeRepository(mockDB.DB).List(context.Background())

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STORAGE_ERROR", appErr.Code)
	assert.Equal(t, 500, appErr.StatusCode)
}

// ============================================================================
// PROJECT REPOSITORY
// ============================================================================

func TestProjectRepository_Create_DefaultsStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now().UTC()
	mockDB.ExpectQuery(`INSERT INTO projects`).
		WithArgs(testutil.AnyUUID{}, "E1", "Website", nil, nil, domain.ProjectStatusActive).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	p := &domain.ProjectMeta{EmployeeID: "E1", ProjectName: "Website"}
	err := repository.NewProjectRepository(mockDB.DB).Create(context.Background(), p)

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)
	mockDB.ExpectationsWereMet(t)
}

func TestProjectRepository_Create_DatesOutOfOrder(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`INSERT INTO projects`).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "projects_dates_ordered"})

	p := &domain.ProjectMeta{
		EmployeeID:  "E1",
		ProjectName: "Website",
		StartDate:   testutil.PtrString("2024-03-10"),
		EndDate:     testutil.PtrString("2024-03-01"),
	}
	err := repository.NewProjectRepository(mockDB.DB).Create(context.Background(), p)

	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestProjectRepository_UpdateStatus_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`UPDATE projects`).
		WithArgs("p-1", domain.ProjectStatusPaused).
		WillReturnError(sql.ErrNoRows)

	_, err := repository.NewProjectRepository(mockDB.DB).UpdateStatus(context.Background(), "p-1", domain.ProjectStatusPaused)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestProjectRepository_Delete_RemovesEntries(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now().UTC()
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`FROM projects WHERE id = $1 FOR UPDATE`).
		WithArgs("p-1").
		WillReturnRows(testutil.MockRows(projectCols...).
			AddRow("p-1", "E1", "Website", nil, nil, "active", now, now))
	mockDB.ExpectExec(`DELETE FROM daily_report_projects p`).
		WithArgs("p-1", "E1", "Website").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mockDB.ExpectExec(`DELETE FROM projects WHERE id = $1`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	p, removed, err := repository.NewProjectRepository(mockDB.DB).Delete(context.Background(), "p-1")

	require.NoError(t, err)
	assert.Equal(t, "Website", p.ProjectName)
	assert.Equal(t, int64(3), removed)
	mockDB.ExpectationsWereMet(t)
}

func TestProjectRepository_Delete_NotFoundRollsBack(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`FOR UPDATE`).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mockDB.ExpectRollback()

	_, _, err := repository.NewProjectRepository(mockDB.DB).Delete(context.Background(), "missing")

	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

// ============================================================================
// REPORT REPOSITORY
// ============================================================================

func TestReportRepository_CreateWithEntries(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	projectID := "4b0c5a44-8f61-4a39-9a4e-5d0c8b1f6a11"
	now := time.Now().UTC()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`INSERT INTO daily_reports`).
		WithArgs(testutil.AnyUUID{}, "E1", "Asha", "2024-03-01").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectExec(`INSERT INTO daily_report_projects`).
		WithArgs(testutil.AnyUUID{}, testutil.AnyUUID{}, projectID, "Website", "09:00", "10:30", "landing page").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec(`INSERT INTO daily_report_projects`).
		WithArgs(testutil.AnyUUID{}, testutil.AnyUUID{}, nil, "Support", "11:00", "11:45", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	report := &domain.DailyReport{
		EmployeeID:   "E1",
		EmployeeName: "Asha",
		ReportDate:   "2024-03-01",
		Entries: []domain.TimeEntry{
			{ProjectID: &projectID, ProjectName: "Website", StartTime: "09:00", EndTime: "10:30", Description: "landing page"},
			{ProjectName: "Support", StartTime: "11:00", EndTime: "11:45"},
		},
	}

	err := repository.NewReportRepository(mockDB.DB).CreateWithEntries(context.Background(), report)

	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, now, report.CreatedAt)
	for _, e := range report.Entries {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, report.ID, e.ReportID)
	}
	mockDB.ExpectationsWereMet(t)
}

func TestReportRepository_CreateWithEntries_DuplicateDate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`INSERT INTO daily_reports`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "daily_reports_employee_date_unique"})
	mockDB.ExpectRollback()

	err := repository.NewReportRepository(mockDB.DB).CreateWithEntries(context.Background(), &domain.DailyReport{
		EmployeeID: "E1", EmployeeName: "Asha", ReportDate: "2024-03-01",
	})

	assert.True(t, errors.Is(err, errors.ErrConflict))
	mockDB.ExpectationsWereMet(t)
}

func TestReportRepository_CreateWithEntries_EntryFailureRollsBack(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`INSERT INTO daily_reports`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectExec(`INSERT INTO daily_report_projects`).
		WillReturnError(sql.ErrConnDone)
	mockDB.ExpectRollback()

	err := repository.NewReportRepository(mockDB.DB).CreateWithEntries(context.Background(), &domain.DailyReport{
		EmployeeID: "E1", EmployeeName: "Asha", ReportDate: "2024-03-01",
		Entries: []domain.TimeEntry{{ProjectName: "Website", StartTime: "09:00", EndTime: "10:00"}},
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STORAGE_ERROR", appErr.Code)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	mockDB.ExpectationsWereMet(t)
}

func TestReportRepository_ListInRange(t *testing.T) {
	t.Run("open range has a single condition", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.ExpectQuery(`FROM daily_reports`).
			WithArgs("E1").
			WillReturnRows(testutil.MockRows("id", "employee_id", "employee_name", "report_date", "created_at"))

		reports, err := repository.NewReportRepository(mockDB.DB).ListInRange(context.Background(), "E1", "", "")

		require.NoError(t, err)
		assert.NotNil(t, reports)
		assert.Empty(t, reports)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("bounded range attaches entries", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		now := time.Now().UTC()
		mockDB.ExpectQuery(`report_date >= $2 AND report_date <= $3`).
			WithArgs("E1", "2024-03-01", "2024-03-31").
			WillReturnRows(testutil.MockRows("id", "employee_id", "employee_name", "report_date", "created_at").
				AddRow("r-2", "E1", "Asha", "2024-03-02", now).
				AddRow("r-1", "E1", "Asha", "2024-03-01", now))
		mockDB.ExpectQuery(`WHERE report_id = ANY($1::uuid[])`).
			WillReturnRows(testutil.MockRows("id", "report_id", "project_id", "project_name", "start_time", "end_time", "task_description").
				AddRow("e-1", "r-1", nil, "Website", "09:00", "10:00", "").
				AddRow("e-2", "r-1", nil, "Support", "10:00", "10:30", "tickets"))

		reports, err := repository.NewReportRepository(mockDB.DB).ListInRange(context.Background(), "E1", "2024-03-01", "2024-03-31")

		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "r-2", reports[0].ID)
		assert.NotNil(t, reports[0].Entries)
		assert.Empty(t, reports[0].Entries)
		require.Len(t, reports[1].Entries, 2)
		assert.Equal(t, "tickets", reports[1].Entries[1].Description)
		mockDB.ExpectationsWereMet(t)
	})
}
