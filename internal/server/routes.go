// Package server wires HTTP handlers into a gorilla/mux router for the
// roomchat application via routing helpers.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures and returns the router with all application routes:
// health check, stats, the WebSocket endpoint per room, and the test page.
func (s *Server) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", HealthHandler)
	router.HandleFunc("/stats", s.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/chat/{room}", s.WebSocketHandler).Methods(http.MethodGet)
	router.HandleFunc("/test", s.TestPageHandler).Methods(http.MethodGet)
	return router
}
