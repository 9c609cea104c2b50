package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

type pong struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

var pongMessage, _ = json.Marshal(pong{Type: "pong", Message: "연결 유지됨"})

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigins),
		},
		logger: logger,
	}
}

// checkOrigin follows the CORS policy: an empty list or "*" allows any origin.
func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
			return true
		}
		return slices.Contains(allowedOrigins, origin)
	}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects. Every inbound message is answered with a pong.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("error upgrading connection", "err", err)
		return
	}

	c := &client{
		conn:   conn,
		userID: r.URL.Query().Get("user_id"),
		send:   make(chan []byte, sendBuffer),
	}

	h.register(c)
	go h.writePump(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "user_id", c.userID, "err", err)
			}
			break
		}

		h.enqueue(c, pongMessage)
	}

	h.unregister(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("websocket write failed", "user_id", c.userID, "err", err)
			h.unregister(c)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket connected", "user_id", c.userID, "connections", count)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("websocket disconnected", "user_id", c.userID, "connections", count)
	}
}

// enqueue reports whether the message was queued; a client whose queue is
// full is dropped.
func (h *Hub) enqueue(c *client, message []byte) bool {
	h.mu.RLock()
	_, ok := h.clients[c]
	if ok {
		select {
		case c.send <- message:
			h.mu.RUnlock()
			return true
		default:
		}
	}
	h.mu.RUnlock()

	if ok {
		h.logger.Warn("dropping slow websocket client", "user_id", c.userID)
		h.unregister(c)
	}

	return false
}

func (h *Hub) snapshot(match func(*client) bool) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if match(c) {
			clients = append(clients, c)
		}
	}

	return clients
}

func (h *Hub) deliver(clients []*client, message any) int {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error encoding websocket message", "err", err)
		return 0
	}

	delivered := 0
	for _, c := range clients {
		if h.enqueue(c, payload) {
			delivered++
		}
	}

	return delivered
}

// Broadcast queues update for every client and returns how many accepted it.
func (h *Hub) Broadcast(update types.RealTimeUpdate) int {
	return h.deliver(h.snapshot(func(*client) bool { return true }), update)
}

func (h *Hub) SendToUser(userID string, message any) int {
	return h.deliver(h.snapshot(func(c *client) bool { return c.userID == userID }), message)
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// ConnectedUsers lists distinct non-empty user ids.
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	users := []string{}
	for c := range h.clients {
		if c.userID != "" && !seen[c.userID] {
			seen[c.userID] = true
			users = append(users, c.userID)
		}
	}
	sort.Strings(users)

	return users
}

// Close disconnects every client.
func (h *Hub) Close() {
	for _, c := range h.snapshot(func(*client) bool { return true }) {
		h.unregister(c)
	}
}
