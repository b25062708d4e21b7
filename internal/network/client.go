package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sandwatch-io/sandwatch/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum spacing between control actions from one client.
	actionCooldown = 100 * time.Millisecond
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// ControlAction represents an incoming command from a renderer UI.
type ControlAction struct {
	Type    string `json:"type"`              // "START", "STOP", "SET_DURATION"
	Seconds int    `json:"seconds,omitempty"` // SET_DURATION payload
}

// controlAck reports the outcome of a control action back to the sender.
type controlAck struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps control actions from the websocket connection to the
// engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var lastAction time.Time
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: " + err.Error())
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action ControlAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse ControlAction: " + err.Error())
			continue
		}

		if time.Since(lastAction) < actionCooldown {
			c.hub.logger.Warn("Control action rate limit exceeded")
			continue
		}
		lastAction = time.Now()

		c.handleControlAction(action)
	}
}

func (c *Client) handleControlAction(action ControlAction) {
	var err error
	switch action.Type {
	case "START":
		err = c.hub.engine.Start()
	case "STOP":
		err = c.hub.engine.Stop()
	case "SET_DURATION":
		err = c.hub.engine.SetDuration(action.Seconds)
	default:
		c.hub.logger.Warn("Unknown ControlAction type: " + action.Type)
		return
	}

	ack := controlAck{Type: "ACK", Action: action.Type}
	if err != nil {
		ack.Error = err.Error()
		c.hub.logger.Warn("Control action " + action.Type + " rejected: " + err.Error())
	} else {
		c.hub.logger.Event(action.Type, "control action accepted")
	}

	if payload, marshalErr := json.Marshal(ack); marshalErr == nil {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
