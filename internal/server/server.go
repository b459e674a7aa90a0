// Package server assembles the roomchat transport: a Server binds the room
// registry and joke source to WebSocket connections.
package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Server serves the HTTP routes and turns each upgraded connection into a
// chat.Session in the room named by the request path.
type Server struct {
	cfg      Config
	rooms    *chat.Registry
	jokes    chat.JokeSource
	hub      *Hub
	origins  originPolicy
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a Server. jokes may be nil, in which case "/joke" requests are
// answered with an error frame.
func New(cfg *Config, rooms *chat.Registry, jokes chat.JokeSource, logger zerolog.Logger) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}

	s := &Server{
		cfg:     *cfg,
		rooms:   rooms,
		jokes:   jokes,
		hub:     NewHub(logger),
		origins: newOriginPolicy(cfg.AllowedOrigins, logger),
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// GetHub returns the server's hub for shutdown coordination.
func (s *Server) GetHub() *Hub {
	return s.hub
}

// Rooms returns the room registry the server routes into.
func (s *Server) Rooms() *chat.Registry {
	return s.rooms
}

// Shutdown closes every WebSocket connection, waiting up to timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.hub.Shutdown(timeout)
}
