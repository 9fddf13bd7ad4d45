package handlers

import (
	"context"
	"net/http"
	"time"
)

// GET /api/projects/{id}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	members, err := h.Members.ListMembers(ctx, projectID, queryInt(r, "offset", 0), queryInt(r, "limit", 100))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, members)
}

// POST /api/projects/{id}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	projectID, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var input struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.UserID == 0 {
		sendError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	membership, err := h.Members.CreateMembership(ctx, actor, projectID, input.UserID, input.Role)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, membership)
}

// GET /api/members/{id}
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	membership, err := h.Members.GetMembership(ctx, id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, membership)
}

// PATCH /api/members/{id}
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
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
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	membership, err := h.Members.UpdateMembership(ctx, actor, id, input.Role)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, membership)
}

// DELETE /api/members/{id}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Members.DeleteMembership(ctx, actor, id); err != nil {
		sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
