package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/pkg/database"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
)

// ProjectRepository handles project metadata persistence
type ProjectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, employee_id, project_name,
	to_char(start_date, 'YYYY-MM-DD') AS start_date,
	to_char(end_date, 'YYYY-MM-DD') AS end_date,
	status, created_at, updated_at`

// ListByEmployee returns the employee's projects ordered by name. An empty
// employeeID lists every project.
func (r *ProjectRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.ProjectMeta, error) {
	projects := []domain.ProjectMeta{}

	var err error
	if employeeID == "" {
		err = r.db.SelectContext(ctx, &projects,
			`SELECT `+projectColumns+` FROM projects ORDER BY employee_id, project_name`)
	} else {
		err = r.db.SelectContext(ctx, &projects,
			`SELECT `+projectColumns+` FROM projects WHERE employee_id = $1 ORDER BY project_name`, employeeID)
	}
	if err != nil {
		return nil, mapError("list projects", err)
	}
	return projects, nil
}

// GetByID gets a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.ProjectMeta, error) {
	var p domain.ProjectMeta
	err := r.db.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, mapError("get project", err)
	}
	return &p, nil
}

// Create inserts a project, assigning an ID when none is set
func (r *ProjectRepository) Create(ctx context.Context, p *domain.ProjectMeta) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = domain.ProjectStatusActive
	}

	query := `
		INSERT INTO projects (id, employee_id, project_name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.EmployeeID, p.ProjectName, p.StartDate, p.EndDate, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("create project", err)
	}
	return nil
}

// Update changes the name and planned dates of a project
func (r *ProjectRepository) Update(ctx context.Context, id, name string, startDate, endDate *string) (*domain.ProjectMeta, error) {
	query := `
		UPDATE projects
		SET project_name = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	var p domain.ProjectMeta
	err := r.db.GetContext(ctx, &p, query, id, name, startDate, endDate)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, mapError("update project", err)
	}
	return &p, nil
}

// UpdateStatus changes the lifecycle status of a project
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.ProjectMeta, error) {
	query := `
		UPDATE projects
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	var p domain.ProjectMeta
	err := r.db.GetContext(ctx, &p, query, id, status)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, mapError("update project status", err)
	}
	return &p, nil
}

// Delete removes a project and the time entries booked on it in one
// transaction. Entries are matched by project ID, or by trimmed name for
// entries stored without one. It returns the deleted project and the number
// of entries removed.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (*domain.ProjectMeta, int64, error) {
	var (
		p       domain.ProjectMeta
		removed int64
	)

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFound("project")
		}
		if err != nil {
			return err
		}

		removed, err = deleteEntriesForProject(ctx, tx, p.ID, p.EmployeeID, p.ProjectName)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, 0, mapError("delete project", err)
	}

	return &p, removed, nil
}

func deleteEntriesForProject(ctx context.Context, tx sqlx.ExecerContext, projectID, employeeID, projectName string) (int64, error) {
	query := `
		DELETE FROM daily_report_projects p
		USING daily_reports r
		WHERE p.report_id = r.id
		  AND r.employee_id = $2
		  AND (p.project_id = $1 OR (p.project_id IS NULL AND TRIM(p.project_name) = TRIM($3)))
	`

	result, err := tx.ExecContext(ctx, query, projectID, employeeID, projectName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
