package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048
)

// Client represents a WebSocket client connection
type Client struct {
	UserID   string
	UserRole string // "driver", "admin" or "resident"
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	db       *sqlx.DB
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewClient creates a new WebSocket client
func NewClient(userID string, userRole string, conn *websocket.Conn, hub *Hub, db *sqlx.DB) *Client {
	return &Client{
		UserID:   userID,
		UserRole: userRole,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 256),
		db:       db,
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		// Mark driver as offline when the WebSocket closes
		c.markAsDisconnected()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message format: %v", err)
			continue
		}

		switch msg.Type {
		case "ping":
			response := map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Format(time.RFC3339),
			}
			responseData, _ := json.Marshal(response)
			c.send <- responseData

		case "location_update":
			c.handleLocationUpdate(msg.Data)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
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

// handleLocationUpdate processes driver location updates received via WebSocket
func (c *Client) handleLocationUpdate(data map[string]interface{}) {
	if c.UserRole != "driver" {
		return
	}

	latitude, ok := data["latitude"].(float64)
	if !ok {
		log.Printf("❌ Invalid latitude in location update")
		return
	}

	longitude, ok := data["longitude"].(float64)
	if !ok {
		log.Printf("❌ Invalid longitude in location update")
		return
	}

	if c.db == nil {
		log.Printf("❌ Database connection not available")
		return
	}

	query := `
		UPDATE drivers
		SET latitude = $1,
		    longitude = $2,
		    updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE user_id = $3
		RETURNING updated_at
	`

	var updatedAt int64
	if err := c.db.QueryRow(query, latitude, longitude, c.UserID).Scan(&updatedAt); err != nil {
		log.Printf("❌ Error saving location to database: %v", err)
		return
	}

	// Mirror the position to admins watching the live map
	locationUpdate := map[string]interface{}{
		"type": "driver_location_update",
		"data": map[string]interface{}{
			"user_id":    c.UserID,
			"latitude":   latitude,
			"longitude":  longitude,
			"updated_at": updatedAt,
		},
	}
	c.hub.BroadcastToRole("admin", locationUpdate)
}

// markAsDisconnected flips the driver offline so the locator stops
// offering them pickups. Last known position is preserved.
func (c *Client) markAsDisconnected() {
	if c.UserRole != "driver" || c.db == nil {
		return
	}

	query := `
		UPDATE drivers
		SET status = 'OFFLINE',
		    is_available = FALSE,
		    updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE user_id = $1
	`

	if _, err := c.db.Exec(query, c.UserID); err != nil {
		log.Printf("❌ Error marking driver as disconnected: %v", err)
		return
	}

	log.Printf("🔴 Driver %s marked offline (last position preserved)", c.UserID)
}
