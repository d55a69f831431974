// Package server exposes a session over HTTP: a websocket control surface,
// Prometheus metrics and a health check.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nstehr/neuroclick/agent"
	"github.com/nstehr/neuroclick/ipc"
	"github.com/nstehr/neuroclick/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Game is a session that clients can drive and watch.
type Game interface {
	agent.Game
	Subscribe(fn func(model.View))
}

type Server struct {
	addr     string
	game     Game
	hub      *Hub
	upgrader websocket.Upgrader
}

// New wires a server to game. Every view the session publishes is broadcast
// to all connected clients.
func New(addr string, game Game) *Server {
	s := &Server{
		addr: addr,
		game: game,
		hub:  NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	game.Subscribe(s.hub.Broadcast)
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := ipc.NewConnection(ws, nil)
	conn.Client = r.RemoteAddr
	a := agent.New(r.Context(), conn, s.game)
	a.Register()

	c := s.hub.register(conn)
	defer s.hub.unregister(c)

	if err := conn.Send(ipc.TypeState, s.game.Snapshot()); err != nil {
		slog.Warn("failed to send initial state", "remote", r.RemoteAddr, "error", err)
		_ = conn.Close()
		return
	}
	conn.ReadLoop()
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
