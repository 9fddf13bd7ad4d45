package services

import (
	"context"
	"fmt"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type MembershipService struct {
	memberships *db.MembershipRepository
	projects    *db.ProjectRepository
	users       *db.UserRepository
	authz       *Authorizer
}

func NewMembershipService(memberships *db.MembershipRepository, projects *db.ProjectRepository, users *db.UserRepository, authz *Authorizer) *MembershipService {
	return &MembershipService{memberships: memberships, projects: projects, users: users, authz: authz}
}

// CreateMembership adds a user to a project. Owners and managers (or
// admins) may add; the (project, user) pair is unique.
func (s *MembershipService) CreateMembership(ctx context.Context, actor *models.User, projectID, userID uint, role string) (*models.Membership, error) {
	if !models.ValidMembershipRole(role) {
		return nil, fmt.Errorf("invalid role %q: %w", role, apperr.ErrInvalidInput)
	}
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, ActionAddMember, Resource{ProjectID: projectID}); err != nil {
		return nil, err
	}

	existing, err := s.memberships.GetByProjectUser(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %d is already a member of project %d: %w", userID, projectID, apperr.ErrConstraintViolation)
	}

	membership := &models.Membership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedBy:   &actor.ID,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *MembershipService) GetMembership(ctx context.Context, membershipID uint) (*models.Membership, error) {
	membership, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, fmt.Errorf("membership %d: %w", membershipID, apperr.ErrNotFound)
	}
	return membership, nil
}

func (s *MembershipService) ListMembers(ctx context.Context, projectID uint, offset, limit int) ([]*models.Membership, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.memberships.ListByProject(ctx, projectID, offset, limit)
}

// UpdateMembership changes a member's role. Owner-only (admin
// override).
func (s *MembershipService) UpdateMembership(ctx context.Context, actor *models.User, membershipID uint, role string) (*models.Membership, error) {
	membership, err := s.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actor, ActionChangeMemberRole, Resource{ProjectID: membership.ProjectID}); err != nil {
		return nil, err
	}
	if !models.ValidMembershipRole(role) {
		return nil, fmt.Errorf("invalid role %q: %w", role, apperr.ErrInvalidInput)
	}
	membership.Role = role
	if err := s.memberships.Update(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteMembership removes a member. Owners and admins may remove
// anyone; members may remove themselves.
func (s *MembershipService) DeleteMembership(ctx context.Context, actor *models.User, membershipID uint) error {
	membership, err := s.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	res := Resource{ProjectID: membership.ProjectID, OwnerID: &membership.UserID}
	if err := s.authz.Authorize(ctx, actor, ActionRemoveMember, res); err != nil {
		return err
	}
	return s.memberships.Delete(ctx, membership)
}

func (s *MembershipService) ensureProject(ctx context.Context, projectID uint) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %d: %w", projectID, apperr.ErrNotFound)
	}
	return nil
}

func (s *MembershipService) ensureUser(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	return nil
}
