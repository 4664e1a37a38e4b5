package service

import (
	"context"
	"strings"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/events"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
)

// EmployeeService handles employee business logic
type EmployeeService struct {
	employees EmployeeStore
	publisher *events.TimesheetEventPublisher
	logger    *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employees EmployeeStore, publisher *events.TimesheetEventPublisher, log *logger.Logger) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		publisher: publisher,
		logger:    log,
	}
}

// CreateEmployeeRequest represents a create employee request
type CreateEmployeeRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required,max=64"`
	EmployeeName string  `json:"employee_name" validate:"required,max=255"`
	Email        *string `json:"email" validate:"omitempty,email"`
}

// List returns all employees
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.employees.List(ctx)
}

// Get returns a single employee
func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*domain.Employee, error) {
	return s.employees.GetByID(ctx, strings.TrimSpace(employeeID))
}

// Create adds an employee. ID and name are stored trimmed.
func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*domain.Employee, error) {
	emp := &domain.Employee{
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		EmployeeName: strings.TrimSpace(req.EmployeeName),
	}

	details := map[string]string{}
	if emp.EmployeeID == "" {
		details["employee_id"] = "this field is required"
	}
	if emp.EmployeeName == "" {
		details["employee_name"] = "this field is required"
	}
	if len(details) > 0 {
		return nil, errors.Validation(details)
	}

	if req.Email != nil {
		if email := strings.TrimSpace(*req.Email); email != "" {
			emp.Email = &email
		}
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info().Str("employee_id", emp.EmployeeID).Msg("employee created")
	s.publisher.PublishEmployeeCreated(ctx, emp)

	return emp, nil
}

// Delete removes an employee and everything they submitted
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	employeeID = strings.TrimSpace(employeeID)
	if err := s.employees.Delete(ctx, employeeID); err != nil {
		return err
	}

	s.logger.Info().Str("employee_id", employeeID).Msg("employee deleted")
	s.publisher.PublishEmployeeDeleted(ctx, employeeID)
	return nil
}
