package handlers

import (
	"context"
	"net/http"
	"time"
)

// GET /api/tasks/{id}/comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	comments, err := h.Comments.ListCommentsForTask(ctx, taskID, queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// POST /api/tasks/{id}/comments
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
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
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.Comments.CreateComment(ctx, actor, taskID, input.Content)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// GET /api/comments/{id}
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	comment, err := h.Comments.GetComment(ctx, id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// PATCH /api/comments/{id}
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
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
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	comment, err := h.Comments.UpdateComment(ctx, actor, id, input.Content)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// DELETE /api/comments/{id}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Comments.DeleteComment(ctx, actor, id); err != nil {
		sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
