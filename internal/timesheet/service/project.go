package service

import (
	"context"
	"strings"

	"github.com/senseprojects/timesheet-backend/internal/timesheet/domain"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/events"
	"github.com/senseprojects/timesheet-backend/pkg/errors"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
)

// ProjectService handles project metadata
type ProjectService struct {
	projects  ProjectStore
	publisher *events.TimesheetEventPublisher
	logger    *logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projects ProjectStore, publisher *events.TimesheetEventPublisher, log *logger.Logger) *ProjectService {
	return &ProjectService{
		projects:  projects,
		publisher: publisher,
		logger:    log,
	}
}

// CreateProjectRequest represents a create project request
type CreateProjectRequest struct {
	EmployeeID  string  `json:"employee_id" validate:"required,max=64"`
	ProjectName string  `json:"project_name" validate:"required,max=255"`
	StartDate   *string `json:"start_date" validate:"omitempty,date"`
	EndDate     *string `json:"end_date" validate:"omitempty,date"`
	Status      string  `json:"status" validate:"omitempty,oneof=active paused completed"`
}

// UpdateProjectRequest represents an update project request
type UpdateProjectRequest struct {
	ProjectName string  `json:"project_name" validate:"required,max=255"`
	StartDate   *string `json:"start_date" validate:"omitempty,date"`
	EndDate     *string `json:"end_date" validate:"omitempty,date"`
}

// UpdateProjectStatusRequest represents a status change
type UpdateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active paused completed"`
}

// DeleteProjectResult reports what a project delete removed
type DeleteProjectResult struct {
	Project        *domain.ProjectMeta `json:"project"`
	EntriesRemoved int64               `json:"entries_removed"`
}

// List returns the employee's projects, or every project when employeeID is empty
func (s *ProjectService) List(ctx context.Context, employeeID string) ([]domain.ProjectMeta, error) {
	return s.projects.ListByEmployee(ctx, strings.TrimSpace(employeeID))
}

// Get returns a single project
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.ProjectMeta, error) {
	return s.projects.GetByID(ctx, id)
}

// Create adds a project for an employee
func (s *ProjectService) Create(ctx context.Context, req *CreateProjectRequest) (*domain.ProjectMeta, error) {
	name := strings.TrimSpace(req.ProjectName)
	if name == "" {
		return nil, errors.Validation(map[string]string{"project_name": "this field is required"})
	}

	status := domain.ProjectStatus(req.Status)
	if status == "" {
		status = domain.ProjectStatusActive
	}
	if !status.Valid() {
		return nil, errors.Validation(map[string]string{"status": "must be one of: active paused completed"})
	}

	startDate, endDate := blankToNil(req.StartDate), blankToNil(req.EndDate)
	if err := checkDateOrder(startDate, endDate); err != nil {
		return nil, err
	}

	p := &domain.ProjectMeta{
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		ProjectName: name,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      status,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project_id", p.ID).Str("employee_id", p.EmployeeID).Msg("project created")
	return p, nil
}

// Update changes the name and planned dates of a project
func (s *ProjectService) Update(ctx context.Context, id string, req *UpdateProjectRequest) (*domain.ProjectMeta, error) {
	name := strings.TrimSpace(req.ProjectName)
	if name == "" {
		return nil, errors.Validation(map[string]string{"project_name": "this field is required"})
	}

	startDate, endDate := blankToNil(req.StartDate), blankToNil(req.EndDate)
	if err := checkDateOrder(startDate, endDate); err != nil {
		return nil, err
	}

	return s.projects.Update(ctx, id, name, startDate, endDate)
}

// UpdateStatus changes the lifecycle status of a project
func (s *ProjectService) UpdateStatus(ctx context.Context, id string, req *UpdateProjectStatusRequest) (*domain.ProjectMeta, error) {
	status := domain.ProjectStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, errors.Validation(map[string]string{"status": "must be one of: active paused completed"})
	}
	return s.projects.UpdateStatus(ctx, id, status)
}

// Delete removes a project together with the time entries booked on it
func (s *ProjectService) Delete(ctx context.Context, id string) (*DeleteProjectResult, error) {
	p, removed, err := s.projects.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("project_id", p.ID).
		Str("employee_id", p.EmployeeID).
		Int64("entries_removed", removed).
		Msg("project deleted")
	s.publisher.PublishProjectDeleted(ctx, p, removed)

	return &DeleteProjectResult{Project: p, EntriesRemoved: removed}, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// checkDateOrder relies on YYYY-MM-DD sorting lexically
func checkDateOrder(start, end *string) error {
	if start != nil && end != nil && *end < *start {
		return errors.Validation(map[string]string{"end_date": "must not be before start_date"})
	}
	return nil
}
