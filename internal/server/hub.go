package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tokencap/gateway/internal/ledger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// broadcastMsg is one queued usage notification, tagged with the project it
// belongs to so the hub can scope delivery per subscriber.
type broadcastMsg struct {
	projectID string
	data      []byte
}

// Hub maintains the set of connected admin usage-stream clients and
// broadcasts each charge to the subscribers of that charge's project.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMsg
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop. It must be run in its own goroutine for
// the lifetime of the server.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.projectID != "" && client.projectID != message.projectID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to the subscribers of projectID (and to
// subscribers with no project filter).
func (h *Hub) Broadcast(projectID string, message []byte) {
	h.broadcast <- broadcastMsg{projectID: projectID, data: message}
}

// BroadcastUsage notifies admin usage-stream subscribers of a completed
// charge, scoped to the charge's project.
func (h *Hub) BroadcastUsage(rec ledger.UsageRecord) {
	message := map[string]any{
		"type": "usage",
		"payload": map[string]any{
			"projectId":    rec.ProjectID,
			"provider":     rec.Provider,
			"modelId":      rec.ModelID,
			"inputTokens":  rec.InputTokens,
			"outputTokens": rec.OutputTokens,
			"costUsd":      rec.CostUSD,
			"requestId":    rec.RequestID,
			"createdAt":    rec.CreatedAt,
		},
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("hub: marshal usage broadcast: %v", err)
		return
	}
	h.Broadcast(rec.ProjectID, data)
}

// Client is one connected admin usage-stream websocket connection.
// projectID is empty when the subscriber did not scope itself to one
// project, in which case it receives every project's charges.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	projectID string
}

// NewClient wires a websocket connection to the hub, optionally scoped to
// a single project's usage events.
func NewClient(hub *Hub, conn *websocket.Conn, projectID string) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, 256), projectID: projectID}
}

// readPump discards inbound client frames (this is a one-way notification
// stream) but keeps the connection's read deadline alive so disconnects
// are detected promptly.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers broadcast messages to the client and pings it on an
// idle interval to detect dead connections.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
