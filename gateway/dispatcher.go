package gateway

import (
	"log/slog"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/rooms"
)

// notificationEvents maps every notification category to the event name
// it is delivered under. Invitations get their own event; categories
// missing from the map fall back to the generic notification event.
var notificationEvents = map[string]string{
	domain.NotificationInvitation: domain.EventWorkspaceInvitation,
	domain.NotificationComment:    domain.EventNotification,
	domain.NotificationAssignment: domain.EventNotification,
	domain.NotificationMention:    domain.EventNotification,
}

func eventFor(notificationType string) string {
	if event, ok := notificationEvents[notificationType]; ok {
		return event
	}
	return domain.EventNotification
}

// Dispatcher is the emit handle held by HTTP collaborators. Delivery is
// at-most-once and fire-and-forget: no retry, no persistence, no
// distinction between an empty room and a delivered fan-out.
type Dispatcher struct {
	g *Gateway
}

// Emit pushes an event to every connection joined to roomKey. It
// reports whether the gateway was ready to attempt delivery; false
// never carries an error, so a producer's HTTP request cannot fail just
// because nobody is listening yet.
func (d *Dispatcher) Emit(roomKey, event string, payload any) bool {
	if !d.g.ready.Load() {
		return false
	}

	frame, err := domain.Frame(event, payload)
	if err != nil {
		slog.Error("event marshal failed", "room", roomKey, "event", event, "error", err)
		return true
	}

	d.g.registry.Broadcast(roomKey, frame)
	return true
}

// JoinSubject pulls every live connection of a subject into a room.
// Producers call it before emitting to a workspace room so the acting
// user's own connections receive subsequent events there. Same
// readiness semantics as Emit.
func (d *Dispatcher) JoinSubject(subjectID, roomKey string) bool {
	if !d.g.ready.Load() {
		return false
	}
	d.g.registry.JoinSubject(subjectID, roomKey)
	return true
}

// EmitNotification delivers a notification record to its owner's
// personal room under the event name for its category.
func (d *Dispatcher) EmitNotification(subjectID string, n domain.Notification) bool {
	return d.Emit(rooms.Notification(subjectID), eventFor(n.Type), n)
}
