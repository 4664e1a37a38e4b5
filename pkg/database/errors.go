package database

import (
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		if strings.Contains(pqErr.Constraint, "employee") {
			return errors.NotFound("employee")
		}
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Invalid datetime format (22007) and datetime out of range (22008)
	case "22007", "22008":
		return errors.Validation(map[string]string{
			"date": "must be a valid date in YYYY-MM-DD format",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: active, paused, completed",
		})

	case strings.Contains(constraint, "dates_ordered"):
		return errors.Validation(map[string]string{
			"end_date": "must not be before start_date",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "employees_pkey"):
		return "employee ID already exists"
	case strings.Contains(constraint, "employee_date"):
		return "a report for this employee and date already exists"
	case strings.Contains(constraint, "project_name"):
		return "a project with this name already exists for the employee"
	default:
		return "a record with these values already exists"
	}
}
