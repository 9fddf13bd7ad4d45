package services

import (
	"context"
	"fmt"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

type Action string

const (
	// ActionModifyAuthored covers editing or deleting an authored
	// resource: a comment or a progress update.
	ActionModifyAuthored Action = "modify_authored"

	ActionAddMember        Action = "add_member"
	ActionChangeMemberRole Action = "change_member_role"
	ActionRemoveMember     Action = "remove_member"
)

// Resource identifies what an action targets: the owning project and,
// when relevant, the user the resource belongs to (a comment's author,
// a membership's member).
type Resource struct {
	ProjectID uint
	OwnerID   *uint
}

// Authorizer is the single permission gate. Rules apply in precedence
// order: global admin, then self-action, then project role, otherwise
// Forbidden. A missing membership record is an ordinary denial, not an
// error.
type Authorizer struct {
	memberships *db.MembershipRepository
}

func NewAuthorizer(memberships *db.MembershipRepository) *Authorizer {
	return &Authorizer{memberships: memberships}
}

func (a *Authorizer) Authorize(ctx context.Context, actor *models.User, action Action, res Resource) error {
	if actor == nil {
		return apperr.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}

	if res.OwnerID != nil && *res.OwnerID == actor.ID {
		switch action {
		case ActionModifyAuthored, ActionRemoveMember:
			return nil
		}
	}

	// Authored resources have no role-based rule; only the author or
	// an admin may touch them.
	if action == ActionModifyAuthored {
		return fmt.Errorf("%s: %w", action, apperr.ErrForbidden)
	}

	membership, err := a.memberships.GetByProjectUser(ctx, res.ProjectID, actor.ID)
	if err != nil {
		return err
	}
	if membership != nil {
		switch action {
		case ActionAddMember:
			if membership.Role == models.MembershipRoleOwner || membership.Role == models.MembershipRoleManager {
				return nil
			}
		case ActionChangeMemberRole, ActionRemoveMember:
			if membership.Role == models.MembershipRoleOwner {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", action, apperr.ErrForbidden)
}
