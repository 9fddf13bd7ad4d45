package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/models"
)

type TagRepositoryInterface interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context, offset, limit int) ([]*models.Tag, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, tag *models.Tag) error
}

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *TagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.WithContext(ctx).First(tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.WithContext(ctx).Where("name = ?", name).First(tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *TagRepository) List(ctx context.Context, offset, limit int) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&tags).Error
	return tags, err
}

// ListByIDs returns the tags that exist among ids; unknown ids are
// simply absent from the result.
func (r *TagRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *TagRepository) Delete(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Delete(tag).Error
}
