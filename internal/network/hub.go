// Package network streams frame descriptors to connected renderers over
// WebSocket and routes their control actions back to the engine. Renderers
// only ever receive immutable frames, never a handle into live state.
package network

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sandwatch-io/sandwatch/internal/engine"
	"github.com/sandwatch-io/sandwatch/internal/frame"
	"github.com/sandwatch-io/sandwatch/internal/platform/logger"
	"github.com/sandwatch-io/sandwatch/internal/platform/metrics"
)

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active renderer connections and broadcasts each
// frame to all of them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Engine
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub bound to the engine's control
// surface.
func NewHub(eng *engine.Engine, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and
// broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("Renderer connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("Renderer disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastFrame serializes a frame descriptor and queues it for every
// connected renderer. Called once per tick from the engine's subscription.
func (h *Hub) BroadcastFrame(fd *frame.Descriptor) {
	payload, err := json.Marshal(fd)
	if err != nil {
		h.logger.Error("Failed to serialize frame for broadcast: " + err.Error())
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// A saturated broadcast queue drops the frame rather than stall
		// the tick loop; the next tick carries fresher state anyway.
		metrics.Get().RecordWSError()
	}
}
