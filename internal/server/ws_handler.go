package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		allowed := IsAllowedOrigin(origin)
		if !allowed {
			log.Printf("[pipeline] websocket: blocked connection from origin: %s", origin)
		}
		return allowed
	},
}

// handleUsageStream upgrades to a websocket and registers the connection
// with the hub, which then pushes a message for every completed charge. An
// optional ?project_id= query parameter scopes the subscription to one
// project; omitting it subscribes to every project's charges.
func (s *Server) handleUsageStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[pipeline] websocket upgrade: %v", err)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	client := NewClient(s.hub, conn, projectID)
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}
