package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/pkg/database"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
)

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `employee_id, employee_name, email, created_at`

// List returns every employee ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	employees := []domain.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY employee_name, employee_id`

	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, mapError("list employees", err)
	}
	return employees, nil
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	var emp domain.Employee
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1`

	err := r.db.GetContext(ctx, &emp, query, employeeID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, mapError("get employee", err)
	}
	return &emp, nil
}

// Create inserts an employee. A duplicate employee ID is a conflict.
func (r *EmployeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	query := `
		INSERT INTO employees (employee_id, employee_name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query, emp.EmployeeID, emp.EmployeeName, emp.Email).
		Scan(&emp.CreatedAt)
	if err != nil {
		return mapError("create employee", err)
	}
	return nil
}

// Delete removes an employee together with their reports and projects
func (r *EmployeeRepository) Delete(ctx context.Context, employeeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = $1`, employeeID)
	if err != nil {
		return mapError("delete employee", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError("delete employee", err)
	}
	if rows == 0 {
		return errors.NotFound("employee")
	}
	return nil
}

// mapError turns known constraint violations into client errors and
// everything else into a storage error.
func mapError(op string, err error) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}
	return errors.Storage(op, err)
}
