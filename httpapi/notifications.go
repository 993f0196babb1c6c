package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
)

type createNotificationRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleCreateNotification persists a notification for a user and
// pushes it to that user's personal room. The event name follows the
// notification category, so invitations arrive on their own channel.
func (s server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and message are required"})
		return
	}
	if req.Type == "" {
		req.Type = domain.NotificationComment
	}

	rec := domain.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Message: req.Message,
	}
	if err := s.notifications.Insert(r.Context(), &rec); err != nil {
		slog.Error("notification insert failed", "userId", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save notification"})
		return
	}

	if !s.dispatcher.EmitNotification(rec.UserID, rec) {
		slog.Warn("realtime dispatch skipped, gateway not ready", "userId", rec.UserID)
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	subjectID := subjectFromContext(r.Context())

	recs, err := s.notifications.ListBySubject(r.Context(), subjectID)
	if err != nil {
		slog.Error("notification list failed", "userId", subjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list notifications"})
		return
	}
	if recs == nil {
		recs = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	if err := s.notifications.MarkRead(r.Context(), notificationID); err != nil {
		slog.Error("notification mark-read failed", "notificationId", notificationID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not mark notification read"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
