package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	defaultWriteTimeout = 5 * time.Second
	pingFrame           = "ping"
	pongFrame           = "pong"
)

type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub holds the connected websocket clients. All writes happen under mu,
// so each connection has at most one concurrent writer.
type Hub struct {
	mu           sync.Mutex
	conns        map[wsConn]struct{}
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		conns:        map[wsConn]struct{}{},
		writeTimeout: defaultWriteTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) Add(conn wsConn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	log.Info().Str("component", "notify").Int("clients", n).Msg("ws client connected")
}

func (h *Hub) Remove(conn wsConn) {
	h.mu.Lock()
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()
	_ = conn.Close()
	log.Info().Str("component", "notify").Int("clients", n).Msg("ws client disconnected")
}

// Broadcast sends data to every client, dropping clients whose write fails.
func (h *Hub) Broadcast(data []byte) {
	if len(data) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := h.writeLocked(conn, data); err != nil {
			log.Warn().Err(err).Str("component", "notify").Msg("ws broadcast failed, dropping connection")
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

func (h *Hub) sendToOne(conn wsConn, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; !ok {
		return
	}
	if err := h.writeLocked(conn, data); err != nil {
		log.Warn().Err(err).Str("component", "notify").Msg("ws send failed, dropping connection")
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

func (h *Hub) writeLocked(conn wsConn, data []byte) error {
	if h.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. A "ping" text frame is answered with "pong".
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "notify").Msg("websocket upgrade")
		return
	}
	h.Add(conn)
	defer h.Remove(conn)

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "notify").Msg("websocket read")
			}
			return
		}
		if typ == websocket.TextMessage && string(data) == pingFrame {
			h.sendToOne(conn, []byte(pongFrame))
		}
	}
}

// Run forwards every message on OrdersTopic to the connected clients until
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context, sub message.Subscriber) error {
	ch, err := sub.Subscribe(ctx, OrdersTopic)
	if err != nil {
		return fmt.Errorf("notify: subscribe %s: %w", OrdersTopic, err)
	}
	log.Info().Str("component", "notify").Str("topic", OrdersTopic).Msg("order broadcaster started")
	for msg := range ch {
		h.Broadcast(msg.Payload)
		msg.Ack()
	}
	h.CloseAll()
	return nil
}
