package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/chepyr/go-task-manager/internal/models"
	"github.com/chepyr/go-task-manager/internal/services"
)

// taskResponse flattens association rows into id lists so clients do
// not have to unwrap full user/tag objects.
type taskResponse struct {
	*models.Task
	AssigneeIDs []uint `json:"assignee_ids"`
	TagIDs      []uint `json:"tag_ids"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		Task:        task,
		AssigneeIDs: task.AssigneeIDs(),
		TagIDs:      task.TagIDs(),
	}
}

func newTaskListResponse(tasks []*models.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, newTaskResponse(task))
	}
	return out
}

// GET /api/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListTasks(ctx, queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, newTaskListResponse(tasks))
}

// POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		ProjectID        uint       `json:"project_id"`
		Title            string     `json:"title"`
		Description      string     `json:"description"`
		ParentTaskID     any        `json:"parent_task_id"`
		Status           string     `json:"status"`
		Priority         *int       `json:"priority"`
		DueAt            *time.Time `json:"due_at"`
		StartAt          *time.Time `json:"start_at"`
		EstimatedMinutes *int       `json:"estimated_minutes"`
		AssigneeIDs      []uint     `json:"assignee_ids"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Title == "" || input.ProjectID == 0 {
		sendError(w, "title and project_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// check if project exists before creating into it
	if _, err := h.Projects.GetProject(ctx, input.ProjectID); err != nil {
		sendDomainError(w, err)
		return
	}

	task, err := h.Tasks.CreateTask(ctx, actor.ID, services.CreateTaskInput{
		ProjectID:        input.ProjectID,
		Title:            input.Title,
		Description:      input.Description,
		ParentTaskID:     input.ParentTaskID,
		Status:           input.Status,
		Priority:         input.Priority,
		DueAt:            input.DueAt,
		StartAt:          input.StartAt,
		EstimatedMinutes: input.EstimatedMinutes,
		AssigneeIDs:      input.AssigneeIDs,
	})
	if err != nil {
		sendDomainError(w, err)
		return
	}
	h.Hub.BroadcastTaskEvent("task_created", task)
	w.Header().Set("Location", "/api/tasks/"+strconv.FormatUint(uint64(task.ID), 10))
	sendJSON(w, http.StatusCreated, newTaskResponse(task))
}

// GET /api/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	task, err := h.Tasks.GetTask(ctx, id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, newTaskResponse(task))
}

// parseParentField interprets the parent_task_id value of a PATCH
// body. Unlike create, updates are strict: null detaches, a positive
// integer reparents, anything else is rejected.
func parseParentField(raw json.RawMessage) (*uint, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true
	}
	var id uint64
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return nil, false
	}
	parentID := uint(id)
	return &parentID, true
}

// PATCH /api/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		Title            *string         `json:"title"`
		Description      *string         `json:"description"`
		Status           *string         `json:"status"`
		Priority         *int            `json:"priority"`
		DueAt            *time.Time      `json:"due_at"`
		StartAt          *time.Time      `json:"start_at"`
		EstimatedMinutes *int            `json:"estimated_minutes"`
		ParentTaskID     json.RawMessage `json:"parent_task_id"`
		AssigneeIDs      *[]uint         `json:"assignee_ids"`
		TagIDs           *[]uint         `json:"tag_ids"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	patch := services.TaskPatch{
		Title:            input.Title,
		Description:      input.Description,
		Status:           input.Status,
		Priority:         input.Priority,
		DueAt:            input.DueAt,
		StartAt:          input.StartAt,
		EstimatedMinutes: input.EstimatedMinutes,
		AssigneeIDs:      input.AssigneeIDs,
		TagIDs:           input.TagIDs,
	}
	if len(input.ParentTaskID) > 0 {
		parentID, ok := parseParentField(input.ParentTaskID)
		if !ok {
			sendError(w, "parent_task_id must be null or a positive integer", http.StatusBadRequest)
			return
		}
		patch.Reparent = true
		patch.NewParentID = parentID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	h.Hub.BroadcastTaskEvent("task_updated", task)
	sendJSON(w, http.StatusOK, newTaskResponse(task))
}

// DELETE /api/tasks/{id}?delete_subtasks={bool}&soft={bool}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	task, err := h.Tasks.GetTask(ctx, id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	opts := services.DeleteOptions{
		DeleteSubtasks: queryBool(r, "delete_subtasks", true),
		Soft:           queryBool(r, "soft", false),
	}
	if err := h.Tasks.DeleteSubtree(ctx, id, opts); err != nil {
		sendDomainError(w, err)
		return
	}
	h.Hub.BroadcastTaskEvent("task_deleted", task)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/tasks/{id}/subtasks
func (h *Handler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListSubtasks(ctx, id, queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, newTaskListResponse(tasks))
}

// PUT /api/tasks/{id}/assignees
func (h *Handler) SetAssignees(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		UserIDs []uint `json:"user_ids"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.SetAssignees(ctx, id, input.UserIDs)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	h.Hub.BroadcastTaskEvent("task_updated", task)
	sendJSON(w, http.StatusOK, newTaskResponse(task))
}

// PUT /api/tasks/{id}/tags
func (h *Handler) SetTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		TagIDs []uint `json:"tag_ids"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.SetTags(ctx, id, input.TagIDs)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	h.Hub.BroadcastTaskEvent("task_updated", task)
	sendJSON(w, http.StatusOK, newTaskResponse(task))
}
