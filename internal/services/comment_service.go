package services

import (
	"context"
	"fmt"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type CommentService struct {
	comments *db.CommentRepository
	tasks    *db.TaskRepository
	authz    *Authorizer
}

func NewCommentService(comments *db.CommentRepository, tasks *db.TaskRepository, authz *Authorizer) *CommentService {
	return &CommentService{comments: comments, tasks: tasks, authz: authz}
}

func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, taskID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment content is required: %w", apperr.ErrInvalidInput)
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	comment := &models.Comment{
		TaskID:  taskID,
		UserID:  &actor.ID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %d: %w", commentID, apperr.ErrNotFound)
	}
	return comment, nil
}

func (s *CommentService) ListCommentsForTask(ctx context.Context, taskID uint, offset, limit int) ([]*models.Comment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	return s.comments.ListByTask(ctx, taskID, offset, limit)
}

// UpdateComment rewrites a comment's content. Author-only, admin
// override.
func (s *CommentService) UpdateComment(ctx context.Context, actor *models.User, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, ActionModifyAuthored, Resource{OwnerID: comment.UserID}); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("comment content is required: %w", apperr.ErrInvalidInput)
	}
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, commentID uint) error {
	comment, err := s.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, actor, ActionModifyAuthored, Resource{OwnerID: comment.UserID}); err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment)
}
