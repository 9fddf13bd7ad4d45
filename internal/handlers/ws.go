package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chepyr/go-task-manager/internal/models"
)

// WSHub tracks websocket connections per project and fans task events
// out to them.
type WSHub struct {
	connections map[uint]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[uint]map[*websocket.Conn]bool)}
}

func (h *WSHub) add(projectID uint, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[projectID] == nil {
		h.connections[projectID] = make(map[*websocket.Conn]bool)
	}
	h.connections[projectID][conn] = true
}

func (h *WSHub) remove(projectID uint, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.connections[projectID], conn)
}

// BroadcastTaskEvent sends an event to every connection watching the
// task's project. Dead connections are dropped on write failure.
func (h *WSHub) BroadcastTaskEvent(event string, task *models.Task) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, exists := h.connections[task.ProjectID]
	if !exists {
		return
	}

	message, err := json.Marshal(map[string]any{
		"event":   event,
		"task_id": task.ID,
		"title":   task.Title,
		"status":  task.Status,
	})
	if err != nil {
		slog.Error("failed to marshal task event", "error", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Warn("failed to send websocket message", "error", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

// HandleWebSocket upgrades the connection and subscribes it to a
// project's task events.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(clientIP(r)) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}

	projectID := queryInt(r, "project_id", 0)
	if projectID <= 0 {
		sendError(w, "project_id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.Projects.GetProject(r.Context(), uint(projectID)); err != nil {
		sendDomainError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten for production deployments
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	h.Hub.add(uint(projectID), conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Hub.remove(uint(projectID), conn)
			conn.Close()
			return
		}
		// incoming client messages are ignored
	}
}
