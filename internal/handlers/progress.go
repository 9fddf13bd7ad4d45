package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chepyr/go-task-manager/internal/services"
)

// GET /api/tasks/{id}/progress?recent={bool}&limit={n}
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if queryBool(r, "recent", false) {
		updates, err := h.Progress.ListRecentForTask(ctx, taskID, queryInt(r, "limit", 10))
		if err != nil {
			sendDomainError(w, err)
			return
		}
		sendJSON(w, http.StatusOK, updates)
		return
	}

	updates, err := h.Progress.ListProgressForTask(ctx, taskID, queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, updates)
}

// POST /api/tasks/{id}/progress
func (h *Handler) CreateProgress(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		Value int    `json:"value"`
		Note  string `json:"note"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	update, err := h.Progress.CreateProgress(ctx, actor, taskID, input.Value, input.Note)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, update)
}

// GET /api/progress/{id}
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	update, err := h.Progress.GetProgress(ctx, id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, update)
}

// PATCH /api/progress/{id}
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		Value *int    `json:"value"`
		Note  *string `json:"note"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	update, err := h.Progress.UpdateProgress(ctx, actor, id, services.ProgressPatch{
		Value: input.Value,
		Note:  input.Note,
	})
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, update)
}

// DELETE /api/progress/{id}
func (h *Handler) DeleteProgress(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Progress.DeleteProgress(ctx, actor, id); err != nil {
		sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
