package ipc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Maximum message size allowed from peer. Imported saves are the largest.
	maxMessageSize = 1 << 20
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single client talking to the game over a websocket.
type Connection struct {
	conn     *websocket.Conn
	handlers map[string]Handler
	writeMu  sync.Mutex // gorilla allows one concurrent writer
	Client   string     // remote label for logs; set before ReadLoop starts
}

func NewConnection(conn *websocket.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.Write(env)
}

// Write sends a prepared envelope. Safe for concurrent use.
func (c *Connection) Write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(env)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("connection read ended", "client", c.Client, "error", err)
			} else {
				slog.Info("connection closed", "client", c.Client)
			}
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			_ = c.Send(TypeError, ErrorMessage{Message: "unknown message type " + env.Type})
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			if err := c.Send(TypeError, ErrorMessage{Message: err.Error()}); err != nil {
				return
			}
			continue
		}

		if resp != nil {
			if err := c.Write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "client", c.Client)
		}
	}
}
