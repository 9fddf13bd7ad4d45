package db

import (
	"context"
	"testing"

	"github.com/chepyr/go-task-manager/internal/models"
)

func createTestProject(t *testing.T, repo *ProjectRepository, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name}
	if err := repo.Create(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func TestTaskRepository_CreateGetUpdateDelete(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)
	projectRepo := NewProjectRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       "First task",
		Description: "hello",
		Status:      "todo",
		Priority:    3,
	}
	if err := taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("TaskRepository.Create: %v", err)
	}

	got, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("TaskRepository.GetByID: %v", err)
	}
	if got == nil || got.Title != "First task" || got.Status != "todo" {
		t.Errorf("GetByID mismatch: %#v", got)
	}

	got.Title = "Updated"
	got.Status = "in-progress"
	if err := taskRepo.Update(context.Background(), got); err != nil {
		t.Fatalf("TaskRepository.Update: %v", err)
	}
	after, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if after.Title != "Updated" || after.Status != "in-progress" {
		t.Errorf("Update not applied: %#v", after)
	}

	if err := taskRepo.DeleteHard(context.Background(), []uint{task.ID}); err != nil {
		t.Fatalf("TaskRepository.DeleteHard: %v", err)
	}
	gone, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if gone != nil {
		t.Errorf("expected nil after delete, got %#v", gone)
	}
}

func TestTaskRepository_GetByID_NonExistent(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)

	task, err := taskRepo.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task != nil {
		t.Fatalf("expected nil for non-existent task, got %#v", task)
	}
}

func TestTaskRepository_SoftDelete_HidesTask(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)
	projectRepo := NewProjectRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	task := &models.Task{ProjectID: project.ID, Title: "Soft me", Status: "todo"}
	if err := taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := taskRepo.SoftDelete(context.Background(), []uint{task.ID}); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	got, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID after soft delete: %v", err)
	}
	if got != nil {
		t.Errorf("soft deleted task still visible: %#v", got)
	}

	// row must still exist in the table
	var count int64
	if err := gdb.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected soft deleted row to remain, count = %d", count)
	}
}

func TestTaskRepository_ListByParentAndProject(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)
	projectRepo := NewProjectRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	root := &models.Task{ProjectID: project.ID, Title: "root", Status: "todo"}
	if err := taskRepo.Create(context.Background(), root); err != nil {
		t.Fatalf("create root: %v", err)
	}
	child := &models.Task{ProjectID: project.ID, Title: "child", Status: "todo", ParentTaskID: &root.ID}
	if err := taskRepo.Create(context.Background(), child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	children, err := taskRepo.ListByParent(context.Background(), root.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListByParent: %v", err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Errorf("ListByParent unexpected: %+v", children)
	}

	all, err := taskRepo.ListByProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 project tasks, got %d", len(all))
	}

	count, err := taskRepo.CountByProject(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("CountByProject: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestTaskRepository_ReplaceAssigneesAndTags(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)
	projectRepo := NewProjectRepository(gdb)
	userRepo := NewUserRepository(gdb)
	tagRepo := NewTagRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	task := &models.Task{ProjectID: project.ID, Title: "task", Status: "todo"}
	if err := taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	user := &models.User{Email: "worker@example.com", PasswordHash: "hash"}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tag := &models.Tag{Name: "urgent", Color: "#ff0000"}
	if err := tagRepo.Create(context.Background(), tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if err := taskRepo.ReplaceAssignees(context.Background(), task, []models.User{*user}); err != nil {
		t.Fatalf("ReplaceAssignees: %v", err)
	}
	if err := taskRepo.ReplaceTags(context.Background(), task, []models.Tag{*tag}); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	got, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.AssigneeIDs()) != 1 || got.AssigneeIDs()[0] != user.ID {
		t.Errorf("assignees not loaded: %+v", got.AssigneeIDs())
	}
	if len(got.TagIDs()) != 1 || got.TagIDs()[0] != tag.ID {
		t.Errorf("tags not loaded: %+v", got.TagIDs())
	}

	// replacing with nothing clears the sets
	if err := taskRepo.ReplaceAssignees(context.Background(), got, nil); err != nil {
		t.Fatalf("ReplaceAssignees clear: %v", err)
	}
	cleared, err := taskRepo.GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(cleared.AssigneeIDs()) != 0 {
		t.Errorf("expected empty assignee set, got %+v", cleared.AssigneeIDs())
	}
}

func TestTaskRepository_HardDeleteCascadesComments(t *testing.T) {
	gdb := openTestDB(t)
	taskRepo := NewTaskRepository(gdb)
	projectRepo := NewProjectRepository(gdb)
	commentRepo := NewCommentRepository(gdb)

	project := createTestProject(t, projectRepo, "Project A")
	task := &models.Task{ProjectID: project.ID, Title: "task", Status: "todo"}
	if err := taskRepo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	comment := &models.Comment{TaskID: task.ID, Content: "note"}
	if err := commentRepo.Create(context.Background(), comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := taskRepo.DeleteHard(context.Background(), []uint{task.ID}); err != nil {
		t.Fatalf("DeleteHard: %v", err)
	}

	got, err := commentRepo.GetByID(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("comment GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected comment to be cascaded away, got %#v", got)
	}
}
