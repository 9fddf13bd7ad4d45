package handlers

import (
	"context"
	"net/http"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// POST /api/users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(clientIP(r)) {
		sendError(w, "Too many register attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if !emailRegex.MatchString(input.Email) {
		sendError(w, "Invalid email", http.StatusBadRequest)
		return
	}
	if len(input.Password) < 4 {
		sendError(w, "Password must be at least 4 characters long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.Register(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// POST /api/users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(clientIP(r)) {
		sendError(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	token, err := h.Users.CreateAccessToken(user.ID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor == nil {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sendJSON(w, http.StatusOK, actor)
}
