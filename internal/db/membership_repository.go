package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/models"
)

type MembershipRepositoryInterface interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id uint) (*models.Membership, error)
	GetByProjectUser(ctx context.Context, projectID, userID uint) (*models.Membership, error)
	ListByProject(ctx context.Context, projectID uint, offset, limit int) ([]*models.Membership, error)
	Update(ctx context.Context, membership *models.Membership) error
	Delete(ctx context.Context, membership *models.Membership) error
}

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uint) (*models.Membership, error) {
	membership := &models.Membership{}
	err := r.db.WithContext(ctx).First(membership, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *MembershipRepository) GetByProjectUser(ctx context.Context, projectID, userID uint) (*models.Membership, error) {
	membership := &models.Membership{}
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *MembershipRepository) ListByProject(ctx context.Context, projectID uint, offset, limit int) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").Offset(offset).Limit(limit).
		Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

func (r *MembershipRepository) Delete(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Delete(membership).Error
}
