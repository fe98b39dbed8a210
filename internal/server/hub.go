package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/honeywatch/console/internal/router"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	clientBuffer   = 64
	broadcastQueue = 256
)

// Hub relays envelopes to connected WebSocket clients. A client that falls
// behind is disconnected.
type Hub struct {
	logger *slog.Logger

	clients    map[*hubClient]struct{}
	broadcast  chan []byte
	register   chan *hubClient
	unregister chan *hubClient
	done       chan struct{}

	running atomic.Bool
	count   atomic.Int64
	dropped atomic.Int64
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an idle hub; call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*hubClient]struct{}),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Too slow; drop the client rather than block the hub.
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("relay client too slow, disconnecting")
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// Attach relays every envelope r dispatches.
func (h *Hub) Attach(r *router.Router) (unsubscribe func()) {
	return r.OnAny(func(env router.Envelope) {
		data, err := json.Marshal(env)
		if err != nil {
			h.logger.Warn("failed to encode envelope for relay", "type", env.Type, "error", err)
			return
		}
		h.Broadcast(data)
	})
}

// Broadcast queues msg for every client without blocking. Messages are
// dropped when the queue is full or the hub has stopped.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Dropped returns how many broadcasts were discarded on a full queue.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Running reports whether Run is serving clients.
func (h *Hub) Running() bool {
	return h.running.Load()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin)
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	if !s.hub.Running() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "relay not running"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &hubClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	case <-time.After(writeWait):
		s.logger.Warn("relay hub did not accept client")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump discards client input and detects disconnects.
func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
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
				c.hub.logger.Debug("relay client read error", "error", err)
			}
			return
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
