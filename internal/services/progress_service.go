package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type ProgressService struct {
	db       *gorm.DB
	progress *db.ProgressRepository
	tasks    *db.TaskRepository
	authz    *Authorizer
}

func NewProgressService(gdb *gorm.DB, progress *db.ProgressRepository, tasks *db.TaskRepository, authz *Authorizer) *ProgressService {
	return &ProgressService{db: gdb, progress: progress, tasks: tasks, authz: authz}
}

func validateProgressValue(value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("progress value must be between 0 and 100: %w", apperr.ErrInvalidInput)
	}
	return nil
}

// CreateProgress records a progress update and propagates its value to
// the task's progress percentage in the same transaction.
func (s *ProgressService) CreateProgress(ctx context.Context, actor *models.User, taskID uint, value int, note string) (*models.ProgressUpdate, error) {
	if err := validateProgressValue(value); err != nil {
		return nil, err
	}

	update := &models.ProgressUpdate{
		TaskID: taskID,
		UserID: &actor.ID,
		Value:  value,
		Note:   note,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
		}
		if err := s.progress.WithTx(tx).Create(ctx, update); err != nil {
			return err
		}
		task.ProgressPercentage = value
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (s *ProgressService) GetProgress(ctx context.Context, progressID uint) (*models.ProgressUpdate, error) {
	update, err := s.progress.GetByID(ctx, progressID)
	if err != nil {
		return nil, err
	}
	if update == nil {
		return nil, fmt.Errorf("progress update %d: %w", progressID, apperr.ErrNotFound)
	}
	return update, nil
}

func (s *ProgressService) ListProgressForTask(ctx context.Context, taskID uint, offset, limit int) ([]*models.ProgressUpdate, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.progress.ListByTask(ctx, taskID, offset, limit)
}

// ListRecentForTask returns the newest updates first.
func (s *ProgressService) ListRecentForTask(ctx context.Context, taskID uint, limit int) ([]*models.ProgressUpdate, error) {
	if err := s.ensureTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.progress.ListRecentByTask(ctx, taskID, limit)
}

type ProgressPatch struct {
	Value *int
	Note  *string
}

// UpdateProgress edits an update (author-only, admin override). A new
// value is re-propagated to the task.
func (s *ProgressService) UpdateProgress(ctx context.Context, actor *models.User, progressID uint, patch ProgressPatch) (*models.ProgressUpdate, error) {
	update, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, ActionModifyAuthored, Resource{OwnerID: update.UserID}); err != nil {
		return nil, err
	}
	if patch.Value != nil {
		if err := validateProgressValue(*patch.Value); err != nil {
			return nil, err
		}
		update.Value = *patch.Value
	}
	if patch.Note != nil {
		update.Note = *patch.Note
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.progress.WithTx(tx).Update(ctx, update); err != nil {
			return err
		}
		if patch.Value == nil {
			return nil
		}
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByID(ctx, update.TaskID)
		if err != nil || task == nil {
			return err
		}
		task.ProgressPercentage = *patch.Value
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

// DeleteProgress removes an update. The task's percentage is left as
// is; there is no recompute from the remaining history.
func (s *ProgressService) DeleteProgress(ctx context.Context, actor *models.User, progressID uint) error {
	update, err := s.GetProgress(ctx, progressID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, actor, ActionModifyAuthored, Resource{OwnerID: update.UserID}); err != nil {
		return err
	}
	return s.progress.Delete(ctx, update)
}

func (s *ProgressService) ensureTask(ctx context.Context, taskID uint) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	return nil
}
