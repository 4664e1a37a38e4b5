package handler_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/handler"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/repository"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/service"
	"github.com/senseprojects/timesheet-backend/pkg/httputil"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employeeCols = []string{"employee_id", "employee_name", "email", "created_at"}
	projectCols  = []string{"id", "employee_id", "project_name", "start_date", "end_date", "status", "created_at", "updated_at"}
	reportCols   = []string{"id", "employee_id", "employee_name", "report_date", "created_at"}
	entryCols    = []string{"id", "report_id", "project_id", "project_name", "start_time", "end_time", "task_description"}
)

type recordingDelivery struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (d *recordingDelivery) Deliver(ctx context.Context, msg *mailer.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, msg)
	return nil
}

type testServer struct {
	router   http.Handler
	db       *testutil.MockDB
	delivery *recordingDelivery
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	log := logger.Nop()
	employeeRepo := repository.NewEmployeeRepository(mockDB.DB)
	projectRepo := repository.NewProjectRepository(mockDB.DB)
	reportRepo := repository.NewReportRepository(mockDB.DB)

	renderer, err := mailer.NewRenderer("Sense Projects Pvt Ltd", "Sense Time Tracker")
	require.NoError(t, err)
	delivery := &recordingDelivery{}

	// no event publisher needed for handler tests
	employeeSvc := service.NewEmployeeService(employeeRepo, nil, log)
	projectSvc := service.NewProjectService(projectRepo, nil, log)
	reportSvc := service.NewReportService(employeeRepo, projectRepo, reportRepo, renderer, delivery, nil, []string{"hr@company.com"}, log)

	r := chi.NewRouter()
	handler.Mount(r,
		handler.NewEmployeeHandler(employeeSvc, log),
		handler.NewProjectHandler(projectSvc, log),
		handler.NewReportHandler(reportSvc, log),
	)

	return &testServer{router: r, db: mockDB, delivery: delivery}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httputil.Response, int) {
	t.Helper()
	rr := testutil.ExecuteRequest(s.router, testutil.NewHTTPRequest(method, path, body))
	var resp httputil.Response
	testutil.ParseJSONBody(t, rr, &resp)
	return &resp, rr.Code
}

func (s *testServer) expectEmployee(id, name string) {
	s.db.ExpectQuery(`FROM employees WHERE employee_id = $1`).
		WithArgs(id).
		WillReturnRows(testutil.MockRows(employeeCols...).AddRow(id, name, nil, time.Now()))
}

// ============================================================================
// EMPLOYEES
// ============================================================================

func TestEmployees_List(t *testing.T) {
	s := newTestServer(t)
	s.db.ExpectQuery(`FROM employees ORDER BY`).
		WillReturnRows(testutil.MockRows(employeeCols...).
			AddRow("E1", "Asha", nil, time.Now()).
			AddRow("E2", "Ravi", "ravi@company.com", time.Now()))

	resp, code := s.do(t, http.MethodGet, "/api/v1/employees", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	s.db.ExpectationsWereMet(t)
}

func TestEmployees_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		s := newTestServer(t)
		s.db.ExpectQuery(`INSERT INTO employees`).
			WithArgs("E3", "Meera", nil).
			WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

		resp, code := s.do(t, http.MethodPost, "/api/v1/employees", map[string]string{
			"employee_id":   "E3",
			"employee_name": "Meera",
		})

		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "Employee added successfully", resp.Message)
		s.db.ExpectationsWereMet(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newTestServer(t)

		resp, code := s.do(t, http.MethodPost, "/api/v1/employees", map[string]string{"employee_id": "E3"})

		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "this field is required", resp.Error.Details["employee_name"])
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := newTestServer(t)
		s.db.ExpectQuery(`INSERT INTO employees`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "employees_pkey"})

		resp, code := s.do(t, http.MethodPost, "/api/v1/employees", map[string]string{
			"employee_id":   "E1",
			"employee_name": "Asha",
		})

		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "employee ID already exists", resp.Error.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t)

		resp, code := s.do(t, http.MethodPost, "/api/v1/employees", `{"employee_id":`)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid JSON body", resp.Error.Message)
	})
}

func TestEmployees_Delete(t *testing.T) {
	s := newTestServer(t)
	s.db.ExpectExec(`DELETE FROM employees`).WithArgs("E9").WillReturnResult(sqlmock.NewResult(0, 0))

	resp, code := s.do(t, http.MethodDelete, "/api/v1/employees/E9", nil)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "employee not found", resp.Error.Message)
}

// ============================================================================
// PROJECTS
// ============================================================================

func TestProjects_UpdateStatus(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()
	s.db.ExpectQuery(`UPDATE projects`).
		WithArgs("p-1", "completed").
		WillReturnRows(testutil.MockRows(projectCols...).
			AddRow("p-1", "E1", "Website", nil, nil, "completed", now, now))

	resp, code := s.do(t, http.MethodPatch, "/api/v1/projects/p-1/status", map[string]string{"status": "completed"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Project marked as completed", resp.Message)
	s.db.ExpectationsWereMet(t)
}

func TestProjects_UpdateStatus_InvalidStatus(t *testing.T) {
	s := newTestServer(t)

	resp, code := s.do(t, http.MethodPatch, "/api/v1/projects/p-1/status", map[string]string{"status": "archived"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must be one of: active paused completed", resp.Error.Details["status"])
}

func TestProjects_UpdateRejectsBadDates(t *testing.T) {
	s := newTestServer(t)

	resp, code := s.do(t, http.MethodPut, "/api/v1/projects/p-1", map[string]string{
		"project_name": "Website",
		"start_date":   "2024-03-10",
		"end_date":     "2024-03-01",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must not be before start_date", resp.Error.Details["end_date"])
}

func TestProjects_Delete(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()
	s.db.ExpectBegin()
	s.db.ExpectQuery(`FOR UPDATE`).WithArgs("p-1").
		WillReturnRows(testutil.MockRows(projectCols...).AddRow("p-1", "E1", "Website", nil, nil, "active", now, now))
	s.db.ExpectExec(`DELETE FROM daily_report_projects`).WillReturnResult(sqlmock.NewResult(0, 2))
	s.db.ExpectExec(`DELETE FROM projects`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.db.ExpectCommit()

	resp, code := s.do(t, http.MethodDelete, "/api/v1/projects/p-1", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Project deleted along with 2 time entries", resp.Message)
	s.db.ExpectationsWereMet(t)
}

// ============================================================================
// REPORTS
// ============================================================================

func TestReports_SubmitDaily_ValidationHappensBeforeStorage(t *testing.T) {
	s := newTestServer(t)

	resp, code := s.do(t, http.MethodPost, "/api/v1/reports/daily", map[string]interface{}{
		"employee_id": "E1",
		"report_date": "10/01/2024",
		"entries": []map[string]string{
			{"project_name": "Alpha", "start_time": "9am", "end_time": "10:00"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", resp.Error.Details["report_date"])
	assert.Equal(t, "must be a time in HH:MM format", resp.Error.Details["entries[0].start_time"])
	s.db.ExpectationsWereMet(t)
}

func TestReports_SubmitDaily_NoEntries(t *testing.T) {
	s := newTestServer(t)
	s.expectEmployee("E1", "Asha")
	s.db.ExpectBegin()
	s.db.ExpectQuery(`INSERT INTO daily_reports`).
		WithArgs(testutil.AnyUUID{}, "E1", "Asha", "2024-01-10").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	s.db.ExpectCommit()

	resp, code := s.do(t, http.MethodPost, "/api/v1/reports/daily", map[string]interface{}{
		"employee_id": "E1",
		"report_date": "2024-01-10",
	})

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Report saved (no projects provided)", resp.Message)
	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.EmailSent)
	assert.False(t, *resp.Meta.EmailSent)
	assert.Empty(t, s.delivery.sent)
	s.db.ExpectationsWereMet(t)
}

func TestReports_SubmitDaily_MailFailure(t *testing.T) {
	s := newTestServer(t)
	s.delivery.err = stderrors.New("dial tcp: connection refused")

	s.expectEmployee("E1", "Asha")
	s.db.ExpectQuery(`FROM projects WHERE employee_id = $1`).
		WithArgs("E1").
		WillReturnRows(testutil.MockRows(projectCols...))
	s.db.ExpectBegin()
	s.db.ExpectQuery(`INSERT INTO daily_reports`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	s.db.ExpectExec(`INSERT INTO daily_report_projects`).
		WithArgs(testutil.AnyUUID{}, testutil.AnyUUID{}, nil, "Alpha", "09:00", "10:00", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.db.ExpectCommit()

	resp, code := s.do(t, http.MethodPost, "/api/v1/reports/daily", map[string]interface{}{
		"employee_id": "E1",
		"report_date": "2024-01-10",
		"entries": []map[string]string{
			{"project_name": "Alpha", "start_time": "09:00", "end_time": "10:00"},
		},
	})

	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "MAIL_DELIVERY_FAILED", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection refused")
	s.db.ExpectationsWereMet(t)
}

func TestReports_Monthly(t *testing.T) {
	s := newTestServer(t)
	s.db.Mock.MatchExpectationsInOrder(false)
	now := time.Now()

	s.expectEmployee("E1", "Asha")
	s.db.ExpectQuery(`FROM daily_reports`).
		WithArgs("E1", "2024-01-01").
		WillReturnRows(testutil.MockRows(reportCols...).
			AddRow("r2", "E1", "Asha", "2024-01-11", now).
			AddRow("r1", "E1", "Asha", "2024-01-10", now))
	s.db.ExpectQuery(`FROM daily_report_projects`).
		WillReturnRows(testutil.MockRows(entryCols...).
			AddRow("e1", "r1", nil, "Gamma", "09:00", "10:00", "").
			AddRow("e2", "r2", nil, "Gamma", "09:00", "10:30", ""))
	s.db.ExpectQuery(`FROM projects WHERE employee_id = $1`).
		WithArgs("E1").
		WillReturnRows(testutil.MockRows(projectCols...))

	resp, code := s.do(t, http.MethodGet, "/api/v1/reports/monthly?employee_id=E1&from_date=2024-01-01", nil)

	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, "from 2024-01-01 onwards", resp.Meta.DateRange)

	data := resp.Data.(map[string]interface{})
	perProject := data["per_project"].([]interface{})
	require.Len(t, perProject, 1)
	gamma := perProject[0].(map[string]interface{})
	assert.Equal(t, "Gamma", gamma["project_name"])
	assert.Equal(t, float64(150), gamma["total_minutes"])
	s.db.ExpectationsWereMet(t)
}

func TestReports_Monthly_RequiresEmployee(t *testing.T) {
	s := newTestServer(t)

	resp, code := s.do(t, http.MethodGet, "/api/v1/reports/monthly", nil)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Details, "employee_id")
}

func TestReports_SendMonthly_EmptyIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.db.Mock.MatchExpectationsInOrder(false)

	s.expectEmployee("E1", "Asha")
	s.db.ExpectQuery(`FROM daily_reports`).WithArgs("E1").WillReturnRows(testutil.MockRows(reportCols...))
	s.db.ExpectQuery(`FROM projects WHERE employee_id = $1`).WithArgs("E1").WillReturnRows(testutil.MockRows(projectCols...))

	resp, code := s.do(t, http.MethodPost, "/api/v1/reports/monthly/send", map[string]string{"employee_id": "E1"})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Message, "generate a report first")
	assert.Empty(t, s.delivery.sent)
}
