package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chepyr/go-task-manager/internal/logging"
	"github.com/chepyr/go-task-manager/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFrom returns the authenticated user stored by AuthMiddleware.
func ActorFrom(ctx context.Context) *models.User {
	actor, _ := ctx.Value(actorKey).(*models.User)
	return actor
}

// AuthMiddleware verifies the bearer token, loads the user and puts it
// on the request context.
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := h.Users.DecodeAccessToken(tokenString)
		if err != nil {
			sendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		user, err := h.Users.GetUser(ctx, userID)
		if err != nil {
			sendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), actorKey, user)))
	}
}

// LogMiddleware logs each request with a generated request id. The
// ResponseWriter is passed through untouched so websocket upgrades keep
// their Hijacker.
func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := logging.WithRequest(requestID, r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		logger.Info("request handled",
			"remote", clientIP(r),
			"duration", time.Since(start).String(),
		)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
