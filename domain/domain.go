package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Server-to-client event names.
const (
	EventTestNotification    = "test-notification"
	EventNotification        = "notification"
	EventWorkspaceInvitation = "workspace-invitation"
	EventNewMessage          = "new-message"
	EventError               = "error"
)

// Client-to-server message names.
const (
	MsgJoinNotificationRoom = "join-notification-room"
)

// Notification categories. Invitation is delivered under its own event
// name so clients can subscribe to it separately; every other category
// arrives as a plain notification.
const (
	NotificationInvitation = "invitation"
	NotificationComment    = "comment"
	NotificationAssignment = "assignment"
	NotificationMention    = "mention"
)

// Envelope is the wire frame for every event in either direction.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Frame marshals an event into its wire form.
func Frame(event string, data any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Notification is a personal notification record for one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatMessage is one persisted workspace chat message.
type ChatMessage struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	SenderID    string    `json:"senderId"`
	Content     string    `json:"content"`
	ReadBy      []string  `json:"readBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Connection is one live transport session. SubjectID is fixed at
// handshake time; the empty string means the connection is anonymous.
type Connection interface {
	ID() string
	SubjectID() string
	Send(data []byte) error
	Close() error
}

// Registry tracks live connections and their room memberships.
// Join is idempotent. The registry does not authorize joins; callers
// check the room membership policy first.
type Registry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	Join(conn Connection, roomKey string)
	JoinSubject(subjectID, roomKey string)
	Broadcast(roomKey string, data []byte)
	Stats() (rooms, clients int)
}

// MessageHandler processes inbound frames from one connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}

// MessageStore persists workspace chat messages.
type MessageStore interface {
	Insert(ctx context.Context, msg *ChatMessage) error
	ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]ChatMessage, error)
	MarkRead(ctx context.Context, messageID, userID string) error
}

// NotificationStore persists personal notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *Notification) error
	ListBySubject(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}
