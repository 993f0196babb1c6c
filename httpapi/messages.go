package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/rooms"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// handleSendMessage persists a chat message, then fans it out to the
// workspace chat room. A dispatcher that is not ready only costs the
// live delivery; the request itself still succeeds.
func (s server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	msg := domain.ChatMessage{
		WorkspaceID: workspaceID,
		SenderID:    subjectFromContext(r.Context()),
		Content:     req.Content,
	}
	if err := s.messages.Insert(r.Context(), &msg); err != nil {
		slog.Error("message insert failed", "workspaceId", workspaceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save message"})
		return
	}

	// Sending is also the implicit entry into the workspace chat room:
	// the sender's live connections start receiving this room's events.
	chatRoom := rooms.WorkspaceChat(workspaceID)
	s.dispatcher.JoinSubject(msg.SenderID, chatRoom)
	if !s.dispatcher.Emit(chatRoom, domain.EventNewMessage, msg) {
		slog.Warn("realtime dispatch skipped, gateway not ready", "workspaceId", workspaceID)
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (s server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	msgs, err := s.messages.ListByWorkspace(r.Context(), workspaceID, limit)
	if err != nil {
		slog.Error("message list failed", "workspaceId", workspaceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list messages"})
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")

	if err := s.messages.MarkRead(r.Context(), messageID, subjectFromContext(r.Context())); err != nil {
		slog.Error("message mark-read failed", "messageId", messageID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not mark message read"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
