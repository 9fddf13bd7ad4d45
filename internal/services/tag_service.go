package services

import (
	"context"
	"fmt"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type TagService struct {
	tags *db.TagRepository
}

func NewTagService(tags *db.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// CreateTag creates a tag; names are globally unique.
func (s *TagService) CreateTag(ctx context.Context, name, color, description string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("tag name is required: %w", apperr.ErrInvalidInput)
	}
	existing, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("tag %q already exists: %w", name, apperr.ErrConstraintViolation)
	}
	tag := &models.Tag{Name: name, Color: color, Description: description}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, tagID uint) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("tag %d: %w", tagID, apperr.ErrNotFound)
	}
	return tag, nil
}

func (s *TagService) ListTags(ctx context.Context, offset, limit int) ([]*models.Tag, error) {
	return s.tags.List(ctx, offset, limit)
}

type TagPatch struct {
	Name        *string
	Color       *string
	Description *string
}

func (s *TagService) UpdateTag(ctx context.Context, tagID uint, patch TagPatch) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil && *patch.Name != tag.Name {
		if *patch.Name == "" {
			return nil, fmt.Errorf("tag name cannot be empty: %w", apperr.ErrInvalidInput)
		}
		existing, err := s.tags.GetByName(ctx, *patch.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("tag %q already exists: %w", *patch.Name, apperr.ErrConstraintViolation)
		}
		tag.Name = *patch.Name
	}
	if patch.Color != nil {
		tag.Color = *patch.Color
	}
	if patch.Description != nil {
		tag.Description = *patch.Description
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes the tag; task associations go with it.
func (s *TagService) DeleteTag(ctx context.Context, tagID uint) error {
	tag, err := s.GetTag(ctx, tagID)
	if err != nil {
		return err
	}
	return s.tags.Delete(ctx, tag)
}
