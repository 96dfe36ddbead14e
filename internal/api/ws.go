package api

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Hub tracks each user's open websocket connections and pushes refresh
// notifications to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // userID -> connections
}

func NewHub() *Hub {
	return &Hub{clients: map[string]map[*Client]bool{}}
}

func (h *Hub) Add(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = map[*Client]bool{}
	}
	h.clients[userID][c] = true
}

func (h *Hub) Remove(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

func (h *Hub) Notify(userID string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.Send(payload)
	}
}

func (h *Hub) CloseUser(userID string) {
	h.mu.Lock()
	conns := h.clients[userID]
	delete(h.clients, userID)
	h.mu.Unlock()
	for c := range conns {
		c.Close()
	}
}

// Client is one websocket connection with a buffered outbound queue.
type Client struct {
	conn *websocket.Conn
	send chan any
	once sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan any, 8)}
}

func (c *Client) Send(msg any) {
	select {
	case c.send <- msg:
	default:
		// drop if the client cannot keep up
	}
}

func (c *Client) Close() {
	c.once.Do(func() { close(c.send) })
}

func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) websocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}
		client := NewClient(conn)
		s.hub.Add(userID, client)
		defer func() {
			s.hub.Remove(userID, client)
			client.Close()
			_ = conn.Close()
		}()

		go client.writePump()

		// Reads are discarded; the socket exists for server push. Exit on
		// client disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
