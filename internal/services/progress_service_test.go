package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
)

func newProgressEnv(t *testing.T) (*testEnv, *ProgressService) {
	t.Helper()
	env := newTestEnv(t)
	memberships := db.NewMembershipRepository(env.gdb)
	progress := db.NewProgressRepository(env.gdb)
	svc := NewProgressService(env.gdb, progress, env.tasks, NewAuthorizer(memberships))
	return env, svc
}

func TestCreateProgress_ValueBounds(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	for _, value := range []int{-1, 101} {
		_, err := svc.CreateProgress(context.Background(), env.creator, task.ID, value, "")
		if !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("value %d: expected ErrInvalidInput, got %v", value, err)
		}
	}
	for _, value := range []int{0, 100} {
		if _, err := svc.CreateProgress(context.Background(), env.creator, task.ID, value, ""); err != nil {
			t.Errorf("value %d: unexpected error %v", value, err)
		}
	}
}

func TestCreateProgress_PropagatesToTask(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	update, err := svc.CreateProgress(context.Background(), env.creator, task.ID, 40, "almost halfway")
	if err != nil {
		t.Fatalf("CreateProgress: %v", err)
	}
	if update.UserID == nil || *update.UserID != env.creator.ID {
		t.Errorf("author not recorded: %v", update.UserID)
	}

	got, err := env.svc.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.ProgressPercentage != 40 {
		t.Errorf("expected task progress 40, got %d", got.ProgressPercentage)
	}
}

func TestCreateProgress_TaskNotFound(t *testing.T) {
	env, svc := newProgressEnv(t)
	_, err := svc.CreateProgress(context.Background(), env.creator, 9999, 10, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProgress_RepropagatesValue(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	update, err := svc.CreateProgress(context.Background(), env.creator, task.ID, 20, "")
	if err != nil {
		t.Fatalf("CreateProgress: %v", err)
	}

	value := 75
	if _, err := svc.UpdateProgress(context.Background(), env.creator, update.ID, ProgressPatch{Value: &value}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	got, err := env.svc.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.ProgressPercentage != 75 {
		t.Errorf("expected task progress 75, got %d", got.ProgressPercentage)
	}

	bad := 150
	if _, err := svc.UpdateProgress(context.Background(), env.creator, update.ID, ProgressPatch{Value: &bad}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateProgress_AuthorOnly(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)
	stranger := env.createUser(t, "stranger@example.com")

	update, err := svc.CreateProgress(context.Background(), env.creator, task.ID, 20, "")
	if err != nil {
		t.Fatalf("CreateProgress: %v", err)
	}

	note := "drive-by edit"
	if _, err := svc.UpdateProgress(context.Background(), stranger, update.ID, ProgressPatch{Note: &note}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteProgress(context.Background(), stranger, update.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden on delete, got %v", err)
	}
}

func TestDeleteProgress_LeavesTaskValue(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	update, err := svc.CreateProgress(context.Background(), env.creator, task.ID, 60, "")
	if err != nil {
		t.Fatalf("CreateProgress: %v", err)
	}
	if err := svc.DeleteProgress(context.Background(), env.creator, update.ID); err != nil {
		t.Fatalf("DeleteProgress: %v", err)
	}

	got, err := env.svc.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.ProgressPercentage != 60 {
		t.Errorf("deleting an update should not touch the task value, got %d", got.ProgressPercentage)
	}
}

func TestListRecentForTask_NewestFirst(t *testing.T) {
	env, svc := newProgressEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	for _, value := range []int{10, 20, 30} {
		if _, err := svc.CreateProgress(context.Background(), env.creator, task.ID, value, ""); err != nil {
			t.Fatalf("CreateProgress %d: %v", value, err)
		}
	}

	recent, err := svc.ListRecentForTask(context.Background(), task.ID, 2)
	if err != nil {
		t.Fatalf("ListRecentForTask: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(recent))
	}
	if recent[0].Value != 30 || recent[1].Value != 20 {
		t.Errorf("expected newest first (30, 20), got (%d, %d)", recent[0].Value, recent[1].Value)
	}
}
