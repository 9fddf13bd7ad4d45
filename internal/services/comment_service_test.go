package services

import (
	"context"
	"errors"
	"testing"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
)

func newCommentEnv(t *testing.T) (*testEnv, *CommentService) {
	t.Helper()
	env := newTestEnv(t)
	memberships := db.NewMembershipRepository(env.gdb)
	comments := db.NewCommentRepository(env.gdb)
	svc := NewCommentService(comments, env.tasks, NewAuthorizer(memberships))
	return env, svc
}

func TestCreateComment(t *testing.T) {
	env, svc := newCommentEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	comment, err := svc.CreateComment(context.Background(), env.creator, task.ID, "looks good")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.UserID == nil || *comment.UserID != env.creator.ID {
		t.Errorf("author not recorded: %v", comment.UserID)
	}

	if _, err := svc.CreateComment(context.Background(), env.creator, task.ID, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty content, got %v", err)
	}
	if _, err := svc.CreateComment(context.Background(), env.creator, 9999, "hi"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing task, got %v", err)
	}
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	env, svc := newCommentEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)
	stranger := env.createUser(t, "stranger@example.com")

	comment, err := svc.CreateComment(context.Background(), env.creator, task.ID, "original")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if _, err := svc.UpdateComment(context.Background(), stranger, comment.ID, "hijacked"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.UpdateComment(context.Background(), env.creator, comment.ID, "edited")
	if err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	if updated.Content != "edited" {
		t.Errorf("content not updated: %q", updated.Content)
	}

	admin := env.createAdmin(t)
	if _, err := svc.UpdateComment(context.Background(), admin, comment.ID, "admin edit"); err != nil {
		t.Errorf("admin should be able to edit any comment: %v", err)
	}
}

func TestDeleteComment(t *testing.T) {
	env, svc := newCommentEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)
	stranger := env.createUser(t, "stranger@example.com")

	comment, err := svc.CreateComment(context.Background(), env.creator, task.ID, "delete me")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := svc.DeleteComment(context.Background(), stranger, comment.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteComment(context.Background(), env.creator, comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, err := svc.GetComment(context.Background(), comment.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListCommentsForTask(t *testing.T) {
	env, svc := newCommentEnv(t)
	project := env.createProject(t, "Project A")
	task := env.createTask(t, project.ID, "task", nil)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := svc.CreateComment(context.Background(), env.creator, task.ID, content); err != nil {
			t.Fatalf("CreateComment %q: %v", content, err)
		}
	}

	comments, err := svc.ListCommentsForTask(context.Background(), task.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListCommentsForTask: %v", err)
	}
	if len(comments) != 3 {
		t.Errorf("expected 3 comments, got %d", len(comments))
	}

	if _, err := svc.ListCommentsForTask(context.Background(), 9999, 0, 10); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing task, got %v", err)
	}
}
