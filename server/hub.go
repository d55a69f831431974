package server

import (
	"log/slog"
	"sync"

	"github.com/nstehr/neuroclick/ipc"
	"github.com/nstehr/neuroclick/model"
)

// sendBuffer bounds how many state frames may queue for a slow client.
const sendBuffer = 16

type client struct {
	conn *ipc.Connection
	send chan ipc.Envelope
}

// Hub keeps the set of connected clients and fans state out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) register(conn *ipc.Connection) *client {
	c := &client{conn: conn, send: make(chan ipc.Envelope, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	go c.writePump()
	slog.Info("websocket client connected", "clients", n)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("websocket client disconnected", "clients", n)
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues v for every client. Each frame is a complete state, so a
// client whose buffer is full skips this one rather than stalling the tick.
func (h *Hub) Broadcast(v model.View) {
	env, err := ipc.NewEnvelope(ipc.TypeState, v)
	if err != nil {
		slog.Error("failed to encode state", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- env:
		default:
			slog.Debug("client behind, dropping state frame", "client", c.conn.Client)
		}
	}
}

// CloseAll drops every client. Hijacked connections are not closed by
// http.Server.Shutdown, so the server calls this on the way out.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (c *client) writePump() {
	for env := range c.send {
		if err := c.conn.Write(env); err != nil {
			slog.Debug("state write failed", "client", c.conn.Client, "error", err)
			_ = c.conn.Close()
			// Keep draining until unregister closes the channel.
			for range c.send {
			}
			return
		}
	}
}
