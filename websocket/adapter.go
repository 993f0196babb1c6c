package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/malekjendoubi21/twin2-project-management-platform-sub002/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn adapts a gorilla connection to domain.Connection. The subject id
// is fixed at construction (handshake) time; "" means anonymous.
type Conn struct {
	id        string
	subjectID string
	ws        *websocket.Conn
	send      chan []byte
	registry  domain.Registry
	handler   domain.MessageHandler
}

func NewConn(id, subjectID string, ws *websocket.Conn, reg domain.Registry, h domain.MessageHandler) *Conn {
	return &Conn{
		id:        id,
		subjectID: subjectID,
		ws:        ws,
		send:      make(chan []byte, 256),
		registry:  reg,
		handler:   h,
	}
}

func (c *Conn) ID() string        { return c.id }
func (c *Conn) SubjectID() string { return c.subjectID }

// Send queues data for the writer goroutine. A full buffer means the
// client is not draining; the frame is refused rather than blocking the
// fan-out.
func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) Start() {
	c.registry.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.registry.Unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
