package db

import (
	"context"
	"testing"

	"github.com/chepyr/go-task-manager/internal/models"
)

func TestMembershipRepository_UniquePair(t *testing.T) {
	gdb := openTestDB(t)
	memberRepo := NewMembershipRepository(gdb)
	projectRepo := NewProjectRepository(gdb)
	userRepo := NewUserRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	user := &models.User{Email: "member@example.com", PasswordHash: "hash"}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	first := &models.Membership{ProjectID: project.ID, UserID: user.ID, Role: models.MembershipRoleMember}
	if err := memberRepo.Create(context.Background(), first); err != nil {
		t.Fatalf("create membership: %v", err)
	}

	dup := &models.Membership{ProjectID: project.ID, UserID: user.ID, Role: models.MembershipRoleManager}
	if err := memberRepo.Create(context.Background(), dup); err == nil {
		t.Fatal("expected unique constraint error for duplicate pair, got nil")
	}
}

func TestMembershipRepository_GetByProjectUser(t *testing.T) {
	gdb := openTestDB(t)
	memberRepo := NewMembershipRepository(gdb)
	projectRepo := NewProjectRepository(gdb)
	userRepo := NewUserRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	user := &models.User{Email: "member@example.com", PasswordHash: "hash"}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	missing, err := memberRepo.GetByProjectUser(context.Background(), project.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByProjectUser: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil before create, got %#v", missing)
	}

	membership := &models.Membership{ProjectID: project.ID, UserID: user.ID, Role: models.MembershipRoleOwner}
	if err := memberRepo.Create(context.Background(), membership); err != nil {
		t.Fatalf("create membership: %v", err)
	}

	got, err := memberRepo.GetByProjectUser(context.Background(), project.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByProjectUser: %v", err)
	}
	if got == nil || got.Role != models.MembershipRoleOwner {
		t.Errorf("GetByProjectUser mismatch: %#v", got)
	}
}
