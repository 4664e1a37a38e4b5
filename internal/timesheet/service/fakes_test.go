package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/events"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/service"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type fakeEmployees struct {
	mu   sync.Mutex
	byID map[string]domain.Employee
}

func newFakeEmployees(emps ...domain.Employee) *fakeEmployees {
	f := &fakeEmployees{byID: map[string]domain.Employee{}}
	for _, e := range emps {
		f.byID[e.EmployeeID] = e
	}
	return f
}

func (f *fakeEmployees) List(ctx context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Employee{}
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("employee")
	}
	return &e, nil
}

func (f *fakeEmployees) Create(ctx context.Context, emp *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[emp.EmployeeID]; ok {
		return errors.Conflict("employee ID already exists")
	}
	f.byID[emp.EmployeeID] = *emp
	return nil
}

func (f *fakeEmployees) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return errors.NotFound("employee")
	}
	delete(f.byID, id)
	return nil
}

type fakeProjects struct {
	mu       sync.Mutex
	projects []domain.ProjectMeta
	removed  int64
	listErr  error
}

func (f *fakeProjects) ListByEmployee(ctx context.Context, employeeID string) ([]domain.ProjectMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.ProjectMeta{}
	for _, p := range f.projects {
		if employeeID == "" || p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id string) (*domain.ProjectMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, errors.NotFound("project")
}

func (f *fakeProjects) Create(ctx context.Context, p *domain.ProjectMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", len(f.projects)+1)
	}
	f.projects = append(f.projects, *p)
	return nil
}

func (f *fakeProjects) Update(ctx context.Context, id, name string, start, end *string) (*domain.ProjectMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects[i].ProjectName = name
			f.projects[i].StartDate = start
			f.projects[i].EndDate = end
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errors.NotFound("project")
}

func (f *fakeProjects) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.ProjectMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects[i].Status = status
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errors.NotFound("project")
}

func (f *fakeProjects) Delete(ctx context.Context, id string) (*domain.ProjectMeta, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return &p, f.removed, nil
		}
	}
	return nil, 0, errors.NotFound("project")
}

type fakeReports struct {
	mu      sync.Mutex
	reports []domain.DailyReport
	listErr error
}

func (f *fakeReports) CreateWithEntries(ctx context.Context, r *domain.DailyReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reports {
		if existing.EmployeeID == r.EmployeeID && existing.ReportDate == r.ReportDate {
			return errors.Conflict("a report for this employee and date already exists")
		}
	}
	r.ID = fmt.Sprintf("report-%d", len(f.reports)+1)
	for i := range r.Entries {
		r.Entries[i].ReportID = r.ID
	}
	f.reports = append(f.reports, *r)
	return nil
}

func (f *fakeReports) ListInRange(ctx context.Context, employeeID, from, to string) ([]domain.DailyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.DailyReport{}
	for _, r := range f.reports {
		if r.EmployeeID != employeeID {
			continue
		}
		if (from != "" && r.ReportDate < from) || (to != "" && r.ReportDate > to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeDelivery struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (f *fakeDelivery) Deliver(ctx context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	employees *fakeEmployees
	projects  *fakeProjects
	reports   *fakeReports
	delivery  *fakeDelivery
	events    *testutil.MockPublisher
	svc       *service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	renderer, err := mailer.NewRenderer("Sense Projects Pvt Ltd", "Sense Time Tracker")
	require.NoError(t, err)

	f := &fixture{
		employees: newFakeEmployees(domain.Employee{EmployeeID: "E1", EmployeeName: "Asha"}),
		projects:  &fakeProjects{},
		reports:   &fakeReports{},
		delivery:  &fakeDelivery{},
		events:    testutil.NewMockPublisher(),
	}
	log := logger.Nop()
	f.svc = service.NewReportService(
		f.employees, f.projects, f.reports,
		renderer, f.delivery,
		events.NewTimesheetEventPublisher(f.events, log),
		[]string{"hr@company.com"},
		log,
	)
	return f
}
