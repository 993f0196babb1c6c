// Package httpapi is the HTTP collaborator surface: the producers that
// persist chat messages and notifications and then push them through
// the realtime dispatcher.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/identity"
)

// Dispatcher is the emit-capable handle obtained from the gateway.
type Dispatcher interface {
	Emit(roomKey, event string, payload any) bool
	EmitNotification(subjectID string, n domain.Notification) bool
	JoinSubject(subjectID, roomKey string) bool
}

type Deps struct {
	Messages      domain.MessageStore
	Notifications domain.NotificationStore
	Dispatcher    Dispatcher
	Resolver      *identity.Resolver
	Registry      domain.Registry
}

type server struct {
	messages      domain.MessageStore
	notifications domain.NotificationStore
	dispatcher    Dispatcher
	resolver      *identity.Resolver
	registry      domain.Registry
}

// Register mounts the API routes on the router.
func Register(r chi.Router, d Deps) {
	s := server{
		messages:      d.Messages,
		notifications: d.Notifications,
		dispatcher:    d.Dispatcher,
		resolver:      d.Resolver,
		registry:      d.Registry,
	}

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/workspaces/{workspaceID}/messages", s.handleSendMessage)
		r.Get("/workspaces/{workspaceID}/messages", s.handleListMessages)
		r.Post("/messages/{messageID}/read", s.handleMarkMessageRead)

		r.Post("/notifications", s.handleCreateNotification)
		r.Get("/notifications", s.handleListNotifications)
		r.Post("/notifications/{notificationID}/read", s.handleMarkNotificationRead)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func (s server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s server) handleStats(w http.ResponseWriter, r *http.Request) {
	rooms, clients := s.registry.Stats()
	writeJSON(w, http.StatusOK, map[string]int{"rooms": rooms, "clients": clients})
}
