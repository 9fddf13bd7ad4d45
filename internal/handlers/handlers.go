package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chepyr/go-task-manager/internal/apperr"
	"github.com/chepyr/go-task-manager/internal/services"
)

type Handler struct {
	Users    *services.UserService
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Tags     *services.TagService
	Comments *services.CommentService
	Progress *services.ProgressService
	Members  *services.MembershipService
	Limiter  *IPRateLimiter
	Hub      *WSHub
}

// Routes wires every endpoint. Register/login and the health check are
// the only unauthenticated routes.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", h.Register)
	mux.HandleFunc("POST /api/users/login", h.Login)
	mux.HandleFunc("GET /api/users/me", h.AuthMiddleware(h.Me))

	mux.HandleFunc("GET /api/projects", h.AuthMiddleware(h.ListProjects))
	mux.HandleFunc("POST /api/projects", h.AuthMiddleware(h.CreateProject))
	mux.HandleFunc("GET /api/projects/{id}", h.AuthMiddleware(h.GetProject))
	mux.HandleFunc("PATCH /api/projects/{id}", h.AuthMiddleware(h.UpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", h.AuthMiddleware(h.DeleteProject))

	mux.HandleFunc("GET /api/projects/{id}/members", h.AuthMiddleware(h.ListMembers))
	mux.HandleFunc("POST /api/projects/{id}/members", h.AuthMiddleware(h.AddMember))
	mux.HandleFunc("GET /api/members/{id}", h.AuthMiddleware(h.GetMember))
	mux.HandleFunc("PATCH /api/members/{id}", h.AuthMiddleware(h.UpdateMember))
	mux.HandleFunc("DELETE /api/members/{id}", h.AuthMiddleware(h.RemoveMember))

	mux.HandleFunc("GET /api/tasks", h.AuthMiddleware(h.ListTasks))
	mux.HandleFunc("POST /api/tasks", h.AuthMiddleware(h.CreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", h.AuthMiddleware(h.GetTask))
	mux.HandleFunc("PATCH /api/tasks/{id}", h.AuthMiddleware(h.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", h.AuthMiddleware(h.DeleteTask))
	mux.HandleFunc("GET /api/tasks/{id}/subtasks", h.AuthMiddleware(h.ListSubtasks))
	mux.HandleFunc("PUT /api/tasks/{id}/assignees", h.AuthMiddleware(h.SetAssignees))
	mux.HandleFunc("PUT /api/tasks/{id}/tags", h.AuthMiddleware(h.SetTags))

	mux.HandleFunc("GET /api/tasks/{id}/comments", h.AuthMiddleware(h.ListComments))
	mux.HandleFunc("POST /api/tasks/{id}/comments", h.AuthMiddleware(h.CreateComment))
	mux.HandleFunc("GET /api/comments/{id}", h.AuthMiddleware(h.GetComment))
	mux.HandleFunc("PATCH /api/comments/{id}", h.AuthMiddleware(h.UpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", h.AuthMiddleware(h.DeleteComment))

	mux.HandleFunc("GET /api/tasks/{id}/progress", h.AuthMiddleware(h.ListProgress))
	mux.HandleFunc("POST /api/tasks/{id}/progress", h.AuthMiddleware(h.CreateProgress))
	mux.HandleFunc("GET /api/progress/{id}", h.AuthMiddleware(h.GetProgress))
	mux.HandleFunc("PATCH /api/progress/{id}", h.AuthMiddleware(h.UpdateProgress))
	mux.HandleFunc("DELETE /api/progress/{id}", h.AuthMiddleware(h.DeleteProgress))

	mux.HandleFunc("GET /api/tags", h.AuthMiddleware(h.ListTags))
	mux.HandleFunc("POST /api/tags", h.AuthMiddleware(h.CreateTag))
	mux.HandleFunc("GET /api/tags/{id}", h.AuthMiddleware(h.GetTag))
	mux.HandleFunc("PATCH /api/tags/{id}", h.AuthMiddleware(h.UpdateTag))
	mux.HandleFunc("DELETE /api/tags/{id}", h.AuthMiddleware(h.DeleteTag))

	mux.HandleFunc("GET /ws", h.AuthMiddleware(h.HandleWebSocket))
	mux.HandleFunc("GET /healthz", h.Health)

	return LogMiddleware(mux)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendDomainError maps taxonomy errors to status codes. Anything
// outside the taxonomy is logged and surfaced as a generic 500.
func sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrConstraintViolation):
		sendError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperr.ErrCrossProjectViolation),
		errors.Is(err, apperr.ErrCycleDetected),
		errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrUnsupportedOperation):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrForbidden):
		sendError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrUnauthenticated):
		sendError(w, err.Error(), http.StatusUnauthorized)
	default:
		slog.Error("internal error", "error", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/json")
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

func queryBool(r *http.Request, name string, defaultValue bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
