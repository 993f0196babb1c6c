// Package gateway owns the lifetime of the realtime subsystem: it binds
// the websocket endpoint to the HTTP router, resolves identity on each
// handshake, and hands out the event dispatcher used by HTTP
// collaborators.
package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/identity"
	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/protocol"
	ws "github.com/malekjendoubi21/twin2-project-management-platform-sub002/websocket"
)

// ErrNotInitialized means the dispatcher was requested before
// Initialize ran. That is a startup-ordering bug in the caller, not a
// runtime condition: callers must treat it as fatal.
var ErrNotInitialized = errors.New("gateway: dispatcher requested before initialization")

// ErrAlreadyInitialized means Initialize was called twice; the gateway
// binds exactly once per process.
var ErrAlreadyInitialized = errors.New("gateway: already initialized")

// Router is the slice of the HTTP router the gateway mounts onto.
// chi.Router satisfies it.
type Router interface {
	Get(pattern string, handlerFn http.HandlerFunc)
}

// Gateway has two states, uninitialized and ready, and transitions once.
type Gateway struct {
	ready    atomic.Bool
	registry domain.Registry
	resolver *identity.Resolver
	handler  domain.MessageHandler
	upgrader websocket.Upgrader
	disp     *Dispatcher
}

func New(reg domain.Registry, resolver *identity.Resolver) *Gateway {
	g := &Gateway{
		registry: reg,
		resolver: resolver,
		handler:  protocol.NewHandler(reg),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	g.disp = &Dispatcher{g: g}
	return g
}

// Initialize mounts the websocket endpoint and marks the gateway ready.
// It returns the dispatcher handle collaborators emit through.
func (g *Gateway) Initialize(r Router) (*Dispatcher, error) {
	if !g.ready.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}
	r.Get("/ws", g.serveWS)
	slog.Info("realtime gateway ready")
	return g.disp, nil
}

// Dispatcher returns the emit handle. It fails while uninitialized so a
// wiring bug surfaces at startup instead of silently dropping events.
func (g *Gateway) Dispatcher() (*Dispatcher, error) {
	if !g.ready.Load() {
		return nil, ErrNotInitialized
	}
	return g.disp, nil
}

// serveWS runs the handshake: resolve identity (failure degrades to
// anonymous, never rejects), upgrade, and start the connection pumps.
func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	subjectID := g.resolver.Resolve(r)

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade error", "error", err)
		return
	}

	wsConn := ws.NewConn(uuid.New().String(), subjectID, conn, g.registry, g.handler)
	wsConn.Start()
}
