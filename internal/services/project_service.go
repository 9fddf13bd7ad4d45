package services

import (
	"context"
	"fmt"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type ProjectService struct {
	projects *db.ProjectRepository
}

func NewProjectService(projects *db.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

func (s *ProjectService) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required: %w", apperr.ErrInvalidInput)
	}
	project := &models.Project{Name: name, Description: description}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %d: %w", projectID, apperr.ErrNotFound)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, offset, limit int) ([]*models.Project, error) {
	return s.projects.List(ctx, offset, limit)
}

type ProjectPatch struct {
	Name        *string
	Description *string
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID uint, patch ProjectPatch) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("project name cannot be empty: %w", apperr.ErrInvalidInput)
		}
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project; its tasks follow via the store
// cascade.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID uint) error {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	return s.projects.Delete(ctx, project)
}
