package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/identity"
)

const cookieName = "jwt"

var secret = []byte("test-secret")

type mockMessageStore struct {
	inserted []domain.ChatMessage
	listed   []domain.ChatMessage
	reads    []string
}

func (m *mockMessageStore) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	msg.ID = "M1"
	msg.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.inserted = append(m.inserted, *msg)
	return nil
}

func (m *mockMessageStore) ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]domain.ChatMessage, error) {
	return m.listed, nil
}

func (m *mockMessageStore) MarkRead(ctx context.Context, messageID, userID string) error {
	m.reads = append(m.reads, messageID+":"+userID)
	return nil
}

type mockNotificationStore struct {
	inserted []domain.Notification
	listed   []domain.Notification
	reads    []string
}

func (m *mockNotificationStore) Insert(ctx context.Context, n *domain.Notification) error {
	n.ID = "N1"
	n.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.inserted = append(m.inserted, *n)
	return nil
}

func (m *mockNotificationStore) ListBySubject(ctx context.Context, userID string) ([]domain.Notification, error) {
	return m.listed, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, notificationID string) error {
	m.reads = append(m.reads, notificationID)
	return nil
}

type emitCall struct {
	roomKey string
	event   string
}

type joinCall struct {
	subjectID string
	roomKey   string
}

type mockDispatcher struct {
	ready         bool
	emits         []emitCall
	joins         []joinCall
	notifications []domain.Notification
}

func (m *mockDispatcher) Emit(roomKey, event string, payload any) bool {
	if !m.ready {
		return false
	}
	m.emits = append(m.emits, emitCall{roomKey: roomKey, event: event})
	return true
}

func (m *mockDispatcher) EmitNotification(subjectID string, n domain.Notification) bool {
	if !m.ready {
		return false
	}
	m.notifications = append(m.notifications, n)
	return true
}

func (m *mockDispatcher) JoinSubject(subjectID, roomKey string) bool {
	if !m.ready {
		return false
	}
	m.joins = append(m.joins, joinCall{subjectID: subjectID, roomKey: roomKey})
	return true
}

type mockRegistry struct {
	rooms, clients int
}

func (m *mockRegistry) Register(conn domain.Connection)             {}
func (m *mockRegistry) Unregister(conn domain.Connection)           {}
func (m *mockRegistry) Join(conn domain.Connection, roomKey string) {}
func (m *mockRegistry) JoinSubject(subjectID, roomKey string)       {}
func (m *mockRegistry) Broadcast(roomKey string, data []byte)       {}
func (m *mockRegistry) Stats() (int, int)                           { return m.rooms, m.clients }

type fixture struct {
	router        chi.Router
	messages      *mockMessageStore
	notifications *mockNotificationStore
	dispatcher    *mockDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		messages:      &mockMessageStore{},
		notifications: &mockNotificationStore{},
		dispatcher:    &mockDispatcher{ready: true},
	}
	f.router = chi.NewRouter()
	Register(f.router, Deps{
		Messages:      f.messages,
		Notifications: f.notifications,
		Dispatcher:    f.dispatcher,
		Resolver:      identity.NewResolver(cookieName, secret),
		Registry:      &mockRegistry{rooms: 2, clients: 3},
	})
	return f
}

func authCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: signed}
}

func (f *fixture) do(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/workspaces/W1/messages", `{"content":"hello"}`, authCookie(t, "U1"))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, f.messages.inserted, 1)
	assert.Equal(t, "W1", f.messages.inserted[0].WorkspaceID)
	assert.Equal(t, "U1", f.messages.inserted[0].SenderID)
	assert.Equal(t, "hello", f.messages.inserted[0].Content)

	require.Len(t, f.dispatcher.emits, 1)
	assert.Equal(t, "workspace-chat:W1", f.dispatcher.emits[0].roomKey)
	assert.Equal(t, domain.EventNewMessage, f.dispatcher.emits[0].event)

	// Sender is pulled into the chat room before the fan-out.
	require.Len(t, f.dispatcher.joins, 1)
	assert.Equal(t, "workspace-chat:W1", f.dispatcher.joins[0].roomKey)
	assert.Equal(t, "U1", f.dispatcher.joins[0].subjectID)

	var msg domain.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "M1", msg.ID)
}

func TestSendMessage_GatewayNotReady(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.ready = false

	w := f.do(t, http.MethodPost, "/api/workspaces/W1/messages", `{"content":"hello"}`, authCookie(t, "U1"))

	// Persisting succeeds even when nobody can be notified.
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, f.messages.inserted, 1)
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty content", body: `{"content":"  "}`},
		{name: "invalid body", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(t, http.MethodPost, "/api/workspaces/W1/messages", tt.body, authCookie(t, "U1"))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, f.messages.inserted)
			assert.Empty(t, f.dispatcher.emits)
		})
	}
}

func TestSendMessage_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/workspaces/W1/messages", `{"content":"hello"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.messages.inserted)
}

func TestListMessages(t *testing.T) {
	f := newFixture(t)
	f.messages.listed = []domain.ChatMessage{{ID: "M1", WorkspaceID: "W1", Content: "hey"}}

	w := f.do(t, http.MethodGet, "/api/workspaces/W1/messages", "", authCookie(t, "U1"))

	require.Equal(t, http.StatusOK, w.Code)
	var msgs []domain.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "M1", msgs[0].ID)
}

func TestMarkMessageRead(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/messages/M1/read", "", authCookie(t, "U1"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"M1:U1"}, f.messages.reads)
}

func TestCreateNotification(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/notifications",
		`{"userId":"U2","type":"invitation","message":"join us"}`, authCookie(t, "U1"))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, f.notifications.inserted, 1)
	assert.Equal(t, "U2", f.notifications.inserted[0].UserID)
	assert.Equal(t, domain.NotificationInvitation, f.notifications.inserted[0].Type)

	require.Len(t, f.dispatcher.notifications, 1)
	assert.Equal(t, "join us", f.dispatcher.notifications[0].Message)
}

func TestCreateNotification_Validation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/notifications", `{"message":"no target"}`, authCookie(t, "U1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.notifications.inserted)
}

func TestListNotifications(t *testing.T) {
	f := newFixture(t)
	f.notifications.listed = []domain.Notification{{ID: "N1", UserID: "U1", Message: "hi"}}

	w := f.do(t, http.MethodGet, "/api/notifications", "", authCookie(t, "U1"))

	require.Equal(t, http.StatusOK, w.Code)
	var recs []domain.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
}

func TestMarkNotificationRead(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/notifications/N1/read", "", authCookie(t, "U1"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"N1"}, f.notifications.reads)
}

func TestHealthAndStats(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats["rooms"])
	assert.Equal(t, 3, stats["clients"])
}
