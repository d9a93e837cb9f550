package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/braseiro-pos/api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// A peer that misses this many seconds of pongs is considered gone.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Register terminals only listen; anything bigger than a close frame
	// is suspect.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Access is gated by the JWT in the query string, not the Origin.
		return true
	},
}

// Client is one register terminal's connection, pinned to a store room.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	storeID uuid.UUID
	send    chan []byte
}

// ReadPump drains the connection until it drops. Terminals never send
// application messages, so reading exists only to notice disconnects and
// answer pings.
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

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
	}
}

// WritePump forwards hub events to the terminal and keeps the connection
// alive with pings. Runs in its own goroutine per connection.
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
				// Hub closed the channel, say goodbye.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any events that queued up while this frame was open.
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

// ServeWS upgrades GET /ws/stores/{sid}/register?token=JWT and joins the
// client to its store's room. Browsers cannot set an Authorization header
// on a WebSocket handshake, hence the query-param token.
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(jwtSecret, tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		http.Error(w, "invalid store id", http.StatusBadRequest)
		return
	}

	// Same scoping rule as the HTTP routes: ADMIN roams, everyone else
	// stays in their own store.
	if claims.Role != "ADMIN" && claims.StoreID != storeID {
		http.Error(w, "store access denied", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		storeID: storeID,
		send:    make(chan []byte, 256),
	}
	client.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}
