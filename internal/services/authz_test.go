package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

func newAuthzEnv(t *testing.T) (*testEnv, *db.MembershipRepository, *Authorizer) {
	t.Helper()
	env := newTestEnv(t)
	memberships := db.NewMembershipRepository(env.gdb)
	return env, memberships, NewAuthorizer(memberships)
}

func addMember(t *testing.T, memberships *db.MembershipRepository, projectID, userID uint, role string) {
	t.Helper()
	m := &models.Membership{ProjectID: projectID, UserID: userID, Role: role}
	if err := memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("create membership: %v", err)
	}
}

func TestAuthorize_NilActor(t *testing.T) {
	_, _, authz := newAuthzEnv(t)

	err := authz.Authorize(context.Background(), nil, ActionAddMember, Resource{ProjectID: 1})
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorize_AdminBypassesEverything(t *testing.T) {
	env, _, authz := newAuthzEnv(t)
	project := env.createProject(t, "Project A")

	admin := &models.User{Email: "admin@example.com", PasswordHash: "hash", Role: models.RoleAdmin}
	if err := env.users.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	for _, action := range []Action{ActionModifyAuthored, ActionAddMember, ActionChangeMemberRole, ActionRemoveMember} {
		if err := authz.Authorize(context.Background(), admin, action, Resource{ProjectID: project.ID}); err != nil {
			t.Errorf("admin denied %s: %v", action, err)
		}
	}
}

func TestAuthorize_AuthorMayModifyOwnResource(t *testing.T) {
	env, _, authz := newAuthzEnv(t)
	author := env.createUser(t, "author@example.com")
	other := env.createUser(t, "other@example.com")

	res := Resource{OwnerID: &author.ID}
	if err := authz.Authorize(context.Background(), author, ActionModifyAuthored, res); err != nil {
		t.Errorf("author denied on own resource: %v", err)
	}
	if err := authz.Authorize(context.Background(), other, ActionModifyAuthored, res); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-author, got %v", err)
	}
}

func TestAuthorize_RoleRules(t *testing.T) {
	env, memberships, authz := newAuthzEnv(t)
	project := env.createProject(t, "Project A")

	owner := env.createUser(t, "owner@example.com")
	manager := env.createUser(t, "manager@example.com")
	member := env.createUser(t, "member@example.com")
	outsider := env.createUser(t, "outsider@example.com")

	addMember(t, memberships, project.ID, owner.ID, models.MembershipRoleOwner)
	addMember(t, memberships, project.ID, manager.ID, models.MembershipRoleManager)
	addMember(t, memberships, project.ID, member.ID, models.MembershipRoleMember)

	res := Resource{ProjectID: project.ID}

	cases := []struct {
		name    string
		actor   *models.User
		action  Action
		allowed bool
	}{
		{"owner adds member", owner, ActionAddMember, true},
		{"manager adds member", manager, ActionAddMember, true},
		{"member adds member", member, ActionAddMember, false},
		{"outsider adds member", outsider, ActionAddMember, false},
		{"owner changes role", owner, ActionChangeMemberRole, true},
		{"manager changes role", manager, ActionChangeMemberRole, false},
		{"owner removes member", owner, ActionRemoveMember, true},
		{"manager removes member", manager, ActionRemoveMember, false},
		{"member removes member", member, ActionRemoveMember, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.Authorize(context.Background(), tc.actor, tc.action, res)
			if tc.allowed && err != nil {
				t.Errorf("expected allow, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, apperr.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorize_SelfRemoval(t *testing.T) {
	env, _, authz := newAuthzEnv(t)
	project := env.createProject(t, "Project A")
	member := env.createUser(t, "member@example.com")

	res := Resource{ProjectID: project.ID, OwnerID: &member.ID}
	if err := authz.Authorize(context.Background(), member, ActionRemoveMember, res); err != nil {
		t.Errorf("member denied removing their own membership: %v", err)
	}
}
