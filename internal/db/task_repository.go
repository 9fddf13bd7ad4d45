package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chepyr/go-task-manager/internal/models"
)

// defines methods for task db operations; the tree traversal logic
// itself lives in the task service.
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	List(ctx context.Context, offset, limit int) ([]*models.Task, error)
	ListByParent(ctx context.Context, parentID uint, offset, limit int) ([]*models.Task, error)
	ListByProject(ctx context.Context, projectID uint) ([]*models.Task, error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteHard(ctx context.Context, ids []uint) error
	SoftDelete(ctx context.Context, ids []uint) error
	SupportsSoftDelete() bool
	ReplaceAssignees(ctx context.Context, task *models.Task, users []models.User) error
	ReplaceTags(ctx context.Context, task *models.Task, tags []models.Tag) error
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given
// transaction. Used by the task service for tree mutations.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Tags").
		First(task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context, offset, limit int) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Tags").
		Order("id").Offset(offset).Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByParent(ctx context.Context, parentID uint, offset, limit int) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Tags").
		Where("parent_task_id = ?", parentID).
		Order("id").Offset(offset).Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// ListByProject returns every live task of a project. The task service
// builds its children adjacency from this snapshot.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uint) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// DeleteHard removes rows outright; comments and progress updates on
// those tasks go with them via the FK cascade.
func (r *TaskRepository) DeleteHard(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Task{}, ids).Error
}

// SoftDelete marks rows deleted in place; no structural removal.
func (r *TaskRepository) SoftDelete(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Task{}, ids).Error
}

func (r *TaskRepository) SupportsSoftDelete() bool { return true }

// ReplaceAssignees swaps the task's entire assignee set.
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, task *models.Task, users []models.User) error {
	assoc := r.db.WithContext(ctx).Model(task).Association("Assignees")
	if len(users) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&users)
}

// ReplaceTags swaps the task's entire tag set.
func (r *TaskRepository) ReplaceTags(ctx context.Context, task *models.Task, tags []models.Tag) error {
	assoc := r.db.WithContext(ctx).Model(task).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&tags)
}
