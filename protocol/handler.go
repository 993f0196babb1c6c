package protocol

import (
	"encoding/json"
	"log/slog"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/rooms"
)

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRequest struct {
	SubjectID string `json:"subjectId"`
}

// Handler processes inbound client frames. The only client-initiated
// request today is joining a personal notification room; the join is
// authorized by the room membership policy before touching the
// registry, and a denial answers with an error event on the same
// connection, which stays open.
type Handler struct {
	registry domain.Registry
}

func NewHandler(reg domain.Registry) *Handler {
	return &Handler{registry: reg}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid frame", "clientId", conn.ID(), "error", err)
		return
	}

	switch msg.Event {
	case domain.MsgJoinNotificationRoom:
		h.handleJoin(conn, msg.Data)
	default:
		slog.Debug("unknown client event", "clientId", conn.ID(), "event", msg.Event)
	}
}

func (h *Handler) handleJoin(conn domain.Connection, data json.RawMessage) {
	var req joinRequest
	if err := json.Unmarshal(data, &req); err != nil || req.SubjectID == "" {
		h.sendError(conn, "invalid join request")
		return
	}

	roomKey := rooms.Notification(req.SubjectID)
	if !rooms.CanJoin(conn.SubjectID(), roomKey) {
		slog.Warn("join denied", "clientId", conn.ID(), "subjectId", conn.SubjectID(), "room", roomKey)
		h.sendError(conn, "not authorized to join "+roomKey)
		return
	}

	h.registry.Join(conn, roomKey)
	h.sendEvent(conn, domain.EventTestNotification, map[string]string{
		"message": "notification room joined",
	})
}

func (h *Handler) sendError(conn domain.Connection, message string) {
	h.sendEvent(conn, domain.EventError, map[string]string{"message": message})
}

func (h *Handler) sendEvent(conn domain.Connection, event string, data any) {
	frame, err := domain.Frame(event, data)
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ID(), "event", event, "error", err)
		return
	}
	if err := conn.Send(frame); err != nil {
		slog.Warn("send error", "clientId", conn.ID(), "event", event, "error", err)
	}
}
