package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512 * 1024 // 512 KB
)

// NotificationSink receives sendNotification requests arriving over the
// socket. Implemented by the notification dispatch service.
type NotificationSink interface {
	HandleSendNotification(ctx context.Context, senderID int64, p NotificationPayload)
}

// connection is one attached client (one browser tab).
type connection struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans server events out to all attached connections and rebroadcasts
// client-originated events. One instance serves the whole process.
type Hub struct {
	log  zerolog.Logger
	sink NotificationSink

	mu          sync.RWMutex
	connections map[string]*connection // connection id -> connection
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:         log,
		connections: make(map[string]*connection),
	}
}

// SetNotificationSink wires the dispatch service in after construction;
// the hub and the service reference each other, so one side attaches late.
func (h *Hub) SetNotificationSink(sink NotificationSink) {
	h.sink = sink
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c.id] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.id]; ok && existing == c {
		delete(h.connections, c.id)
		close(c.send)
	}
}

// ConnectionCount reports how many clients are attached.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// BroadcastAll sends an event to every attached connection.
func (h *Hub) BroadcastAll(event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("broadcast encode failed")
		return
	}
	h.broadcastEnvelope(env, 0)
}

// SendToUser delivers an event to every connection of one user. Reports
// whether at least one connection accepted the frame.
func (h *Hub) SendToUser(userID int64, event string, payload any) bool {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("send encode failed")
		return false
	}
	return h.broadcastEnvelope(env, userID)
}

// broadcastEnvelope writes a frame to matching connections; userID 0 means
// all. Slow clients are skipped rather than blocking the fan-out.
func (h *Hub) broadcastEnvelope(env Envelope, userID int64) bool {
	data, err := json.Marshal(env)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for _, c := range h.connections {
		if userID != 0 && c.userID != userID {
			continue
		}
		select {
		case c.send <- data:
			delivered = true
		default:
			h.log.Warn().Str("conn_id", c.id).Int64("user_id", c.userID).Msg("client too slow, frame dropped")
		}
	}
	return delivered
}

// ServeWS attaches a connection and runs its pump loops. Blocks until the
// client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64) {
	c := &connection{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
	}

	h.register(c)
	h.log.Info().Str("conn_id", c.id).Int64("user_id", userID).Msg("client connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Info().Str("conn_id", c.id).Int64("user_id", c.userID).Msg("client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("conn_id", c.id).Msg("read error")
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			h.log.Warn().Err(err).Str("conn_id", c.id).Msg("malformed frame")
			continue
		}

		h.handleClientEvent(c, env)
	}
}

// handleClientEvent routes a client-originated frame. Notification requests
// go through the dispatch service so they are persisted before delivery;
// shared-state events are echoed verbatim to every connection.
func (h *Hub) handleClientEvent(c *connection, env Envelope) {
	switch env.Event {
	case EventSendNotification:
		if h.sink == nil {
			h.log.Warn().Str("conn_id", c.id).Msg("sendNotification with no sink attached")
			return
		}
		var p NotificationPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warn().Err(err).Str("conn_id", c.id).Msg("bad sendNotification payload")
			return
		}
		h.sink.HandleSendNotification(context.Background(), c.userID, p)
	case EventTaskUpdated, EventProjectUpdated, EventCommentAdded:
		h.broadcastEnvelope(env, 0)
	default:
		h.log.Warn().Str("event", env.Event).Str("conn_id", c.id).Msg("unknown event")
	}
}

func (h *Hub) writePump(c *connection) {
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
