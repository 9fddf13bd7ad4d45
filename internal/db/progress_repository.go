package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/models"
)

type ProgressRepositoryInterface interface {
	Create(ctx context.Context, update *models.ProgressUpdate) error
	GetByID(ctx context.Context, id uint) (*models.ProgressUpdate, error)
	ListByTask(ctx context.Context, taskID uint, offset, limit int) ([]*models.ProgressUpdate, error)
	ListRecentByTask(ctx context.Context, taskID uint, limit int) ([]*models.ProgressUpdate, error)
	Update(ctx context.Context, update *models.ProgressUpdate) error
	Delete(ctx context.Context, update *models.ProgressUpdate) error
}

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given
// transaction.
func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: tx}
}

func (r *ProgressRepository) Create(ctx context.Context, update *models.ProgressUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *ProgressRepository) GetByID(ctx context.Context, id uint) (*models.ProgressUpdate, error) {
	update := &models.ProgressUpdate{}
	err := r.db.WithContext(ctx).First(update, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (r *ProgressRepository) ListByTask(ctx context.Context, taskID uint, offset, limit int) ([]*models.ProgressUpdate, error) {
	var updates []*models.ProgressUpdate
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id").Offset(offset).Limit(limit).
		Find(&updates).Error
	return updates, err
}

// ListRecentByTask returns the newest updates first.
func (r *ProgressRepository) ListRecentByTask(ctx context.Context, taskID uint, limit int) ([]*models.ProgressUpdate, error) {
	var updates []*models.ProgressUpdate
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").Limit(limit).
		Find(&updates).Error
	return updates, err
}

func (r *ProgressRepository) Update(ctx context.Context, update *models.ProgressUpdate) error {
	return r.db.WithContext(ctx).Save(update).Error
}

func (r *ProgressRepository) Delete(ctx context.Context, update *models.ProgressUpdate) error {
	return r.db.WithContext(ctx).Delete(update).Error
}
