package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/models"
)

// TaskService owns the task tree: parent validation, cycle detection,
// subtree deletion and the assignee/tag set maintenance. Tree
// mutations run inside a transaction so concurrent reparents cannot
// sneak a cycle past each other.
type TaskService struct {
	db         *gorm.DB
	tasks      *db.TaskRepository
	users      *db.UserRepository
	tags       *db.TagRepository
	softDelete bool
}

func NewTaskService(gdb *gorm.DB, tasks *db.TaskRepository, users *db.UserRepository, tags *db.TagRepository) *TaskService {
	return &TaskService{
		db:         gdb,
		tasks:      tasks,
		users:      users,
		tags:       tags,
		softDelete: tasks.SupportsSoftDelete(),
	}
}

type CreateTaskInput struct {
	ProjectID   uint
	Title       string
	Description string

	// ParentTaskID is the raw client value; see NormalizeParentID.
	ParentTaskID any

	Status           string
	Priority         *int
	DueAt            *time.Time
	StartAt          *time.Time
	EstimatedMinutes *int
	AssigneeIDs      []uint
}

// NormalizeParentID converts a caller-supplied parent id into a usable
// pointer. Non-positive, fractional or non-numeric values mean "no
// parent" rather than an error, so sloppy client payloads still create
// root tasks.
func NormalizeParentID(v any) *uint {
	var n float64
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		n = val
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case uint:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		n = f
	default:
		return nil
	}
	if n <= 0 || n != math.Trunc(n) {
		return nil
	}
	id := uint(n)
	return &id
}

func (s *TaskService) CreateTask(ctx context.Context, creatorID uint, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrInvalidInput)
	}
	parentID := NormalizeParentID(in.ParentTaskID)

	// Unresolved assignee ids are dropped, existing users only.
	assignees, err := s.users.ListByIDs(ctx, dedupeIDs(in.AssigneeIDs))
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:        in.ProjectID,
		CreatorID:        &creatorID,
		ParentTaskID:     parentID,
		Title:            in.Title,
		Description:      in.Description,
		Status:           in.Status,
		Priority:         3,
		DueAt:            in.DueAt,
		StartAt:          in.StartAt,
		EstimatedMinutes: in.EstimatedMinutes,
	}
	if task.Status == "" {
		task.Status = models.DefaultTaskStatus
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		if parentID != nil {
			if _, err := validateParent(ctx, tasks, in.ProjectID, *parentID); err != nil {
				return err
			}
		}
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		if len(assignees) > 0 {
			return tasks.ReplaceAssignees(ctx, task, assignees)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, task.ID)
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, error) {
	return s.tasks.List(ctx, offset, limit)
}

// ListSubtasks returns the direct children of a task.
func (s *TaskService) ListSubtasks(ctx context.Context, parentID uint, offset, limit int) ([]*models.Task, error) {
	if _, err := s.GetTask(ctx, parentID); err != nil {
		return nil, err
	}
	return s.tasks.ListByParent(ctx, parentID, offset, limit)
}

// Reparent moves a task under a new parent, or detaches it when
// newParentID is nil. The parent must exist, live in the same project
// and not be a descendant of the task.
func (s *TaskService) Reparent(ctx context.Context, taskID uint, newParentID *uint) (*models.Task, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
		}

		if newParentID == nil {
			task.ParentTaskID = nil
			return tasks.Update(ctx, task)
		}

		parent, err := validateParent(ctx, tasks, task.ProjectID, *newParentID)
		if err != nil {
			return err
		}
		if err := checkNoCycle(ctx, tasks, task, parent); err != nil {
			return err
		}
		task.ParentTaskID = &parent.ID
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, taskID)
}

// validateParent resolves a candidate parent and checks it belongs to
// the given project.
func validateParent(ctx context.Context, tasks *db.TaskRepository, projectID, parentID uint) (*models.Task, error) {
	parent, err := tasks.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("parent task %d: %w", parentID, apperr.ErrNotFound)
	}
	if parent.ProjectID != projectID {
		return nil, fmt.Errorf("parent task %d: %w", parentID, apperr.ErrCrossProjectViolation)
	}
	return parent, nil
}

// checkNoCycle walks the candidate parent's ancestor chain looking for
// the task being moved. The walk is bounded by the project's task
// count; running past that bound means the chain itself is malformed
// and is treated as a cycle.
func checkNoCycle(ctx context.Context, tasks *db.TaskRepository, task, parent *models.Task) error {
	bound, err := tasks.CountByProject(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	cur := parent
	for steps := int64(0); ; steps++ {
		if cur.ID == task.ID {
			return fmt.Errorf("task %d would become its own ancestor: %w", task.ID, apperr.ErrCycleDetected)
		}
		if steps > bound {
			return fmt.Errorf("ancestor chain longer than project task count: %w", apperr.ErrCycleDetected)
		}
		if cur.ParentTaskID == nil {
			return nil
		}
		next, err := tasks.GetByID(ctx, *cur.ParentTaskID)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		cur = next
	}
}

// DeleteOptions selects what happens to the subtree under a deleted
// task. Soft takes precedence over the cascade/reparent choice.
type DeleteOptions struct {
	// DeleteSubtasks removes the whole descendant set; when false,
	// direct children are promoted to the deleted task's parent.
	DeleteSubtasks bool
	Soft           bool
}

// DeleteSubtree deletes a task by the chosen mode. The descendant set
// is computed from a snapshot of the project's tasks inside the same
// transaction that performs the deletion.
func (s *TaskService) DeleteSubtree(ctx context.Context, taskID uint, opts DeleteOptions) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		root, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if root == nil {
			return fmt.Errorf("task %d: %w", taskID, apperr.ErrNotFound)
		}
		if opts.Soft && !s.softDelete {
			return fmt.Errorf("soft delete: %w", apperr.ErrUnsupportedOperation)
		}

		all, err := tasks.ListByProject(ctx, root.ProjectID)
		if err != nil {
			return err
		}
		children := make(map[uint][]*models.Task)
		for _, t := range all {
			if t.ParentTaskID != nil {
				children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
			}
		}

		// Descendant set, root included. The seen map keeps the walk
		// finite even if the stored tree is malformed.
		var ids []uint
		seen := make(map[uint]bool)
		stack := []uint{root.ID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			for _, child := range children[id] {
				stack = append(stack, child.ID)
			}
		}

		switch {
		case opts.Soft:
			return tasks.SoftDelete(ctx, ids)
		case opts.DeleteSubtasks:
			return tasks.DeleteHard(ctx, ids)
		default:
			// Promote direct children one level, then drop the root.
			for _, child := range children[root.ID] {
				child.ParentTaskID = root.ParentTaskID
				if err := tasks.Update(ctx, child); err != nil {
					return err
				}
			}
			return tasks.DeleteHard(ctx, []uint{root.ID})
		}
	})
}

// TaskPatch carries optional field updates; nil fields are left alone.
// Reparent is set when the patch included parent_task_id, with
// NewParentID nil meaning "detach".
type TaskPatch struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *int
	DueAt            *time.Time
	StartAt          *time.Time
	EstimatedMinutes *int

	Reparent    bool
	NewParentID *uint

	AssigneeIDs *[]uint
	TagIDs      *[]uint
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, patch TaskPatch) (*models.Task, error) {
	if patch.Reparent {
		if _, err := s.Reparent(ctx, taskID, patch.NewParentID); err != nil {
			return nil, err
		}
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", apperr.ErrInvalidInput)
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueAt != nil {
		task.DueAt = patch.DueAt
	}
	if patch.StartAt != nil {
		task.StartAt = patch.StartAt
	}
	if patch.EstimatedMinutes != nil {
		task.EstimatedMinutes = patch.EstimatedMinutes
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if patch.AssigneeIDs != nil {
		if _, err := s.SetAssignees(ctx, taskID, *patch.AssigneeIDs); err != nil {
			return nil, err
		}
	}
	if patch.TagIDs != nil {
		if _, err := s.SetTags(ctx, taskID, *patch.TagIDs); err != nil {
			return nil, err
		}
	}
	return s.GetTask(ctx, taskID)
}

// SetAssignees replaces the task's entire assignee set. Ids that do
// not resolve to an existing user are dropped silently; an empty input
// clears the set.
func (s *TaskService) SetAssignees(ctx context.Context, taskID uint, userIDs []uint) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByIDs(ctx, dedupeIDs(userIDs))
	if err != nil {
		return nil, err
	}
	if err := s.tasks.ReplaceAssignees(ctx, task, users); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, taskID)
}

// SetTags replaces the task's entire tag set with the same semantics
// as SetAssignees.
func (s *TaskService) SetTags(ctx context.Context, taskID uint, tagIDs []uint) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.ListByIDs(ctx, dedupeIDs(tagIDs))
	if err != nil {
		return nil, err
	}
	if err := s.tasks.ReplaceTags(ctx, task, tags); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, taskID)
}

func dedupeIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
