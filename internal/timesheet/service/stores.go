package service

import (
	"context"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
)

// EmployeeStore is implemented by repository.EmployeeRepository
type EmployeeStore interface {
	List(ctx context.Context) ([]domain.Employee, error)
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
	Create(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, employeeID string) error
}

// ProjectStore is implemented by repository.ProjectRepository
type ProjectStore interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.ProjectMeta, error)
	GetByID(ctx context.Context, id string) (*domain.ProjectMeta, error)
	Create(ctx context.Context, p *domain.ProjectMeta) error
	Update(ctx context.Context, id, name string, startDate, endDate *string) (*domain.ProjectMeta, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.ProjectMeta, error)
	Delete(ctx context.Context, id string) (*domain.ProjectMeta, int64, error)
}

// ReportStore is implemented by repository.ReportRepository
type ReportStore interface {
	CreateWithEntries(ctx context.Context, report *domain.DailyReport) error
	ListInRange(ctx context.Context, employeeID, fromDate, toDate string) ([]domain.DailyReport, error)
}
