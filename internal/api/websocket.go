package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/earpanel-core/internal/infrastructure/config"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/logging"
	"github.com/nerrad567/earpanel-core/internal/session"
)

// Frame types exchanged on /api/v1/ws.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
	FramePong        = "pong"
	FrameEvent       = "event"
	FrameResponse    = "response"
	FrameError       = "error"

	// ChannelAll matches every session event type.
	ChannelAll = "*"

	clientQueueSize = 256
)

// Frame is one WebSocket message. Event frames carry a session.Event as
// payload and its type in EventType.
type Frame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// ChannelList is the payload of subscribe and unsubscribe frames.
// Channels are session event types such as "battery.low", or ChannelAll.
type ChannelList struct {
	Channels []string `json:"channels"`
}

type inboundFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CORS middleware has already vetted the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans session events out to WebSocket clients by event type.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

var _ session.EventSink = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// HandleEvent sends e to every client subscribed to its type.
func (h *Hub) HandleEvent(e session.Event) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	data, err := json.Marshal(Frame{
		Type:      FrameEvent,
		EventType: string(e.Type),
		Timestamp: ts.UTC().Format(time.RFC3339),
		Payload:   e,
	})
	if err != nil {
		h.logger.Error("encoding websocket event", "type", e.Type, "error", err)
		return
	}
	h.publish(string(e.Type), data)
}

// Run disconnects every client once ctx is done.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.shutdown()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// remove drops c and closes its queue. Only the caller that finds c in
// the map closes the queue.
func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		close(c.send)
		h.logger.Debug("websocket client disconnected", "clients", n)
	}
}

// publish queues data for subscribers of channel. The hub lock is released
// before any client lock is taken.
func (h *Hub) publish(channel string, data []byte) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if c.wants(channel) {
			c.enqueue(data)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			c.conn.Close() //nolint:errcheck // shutting down
		}
		delete(h.clients, c)
	}
}

// serveWS upgrades the request and starts the client's read and write
// loops. New clients receive nothing until they subscribe.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		hub:      s.hub,
		conn:     conn,
		send:     make(chan []byte, clientQueueSize),
		channels: make(map[string]struct{}),
	}
	s.hub.add(c)

	ka := keepaliveFrom(s.wsCfg)
	go c.writeLoop(ka)
	go c.readLoop(ka, int64(s.wsCfg.MaxMessageSize))
}

type keepalive struct {
	ping time.Duration
	pong time.Duration
}

func keepaliveFrom(cfg config.WebSocketConfig) keepalive {
	return keepalive{
		ping: time.Duration(cfg.PingInterval) * time.Second,
		pong: time.Duration(cfg.PongTimeout) * time.Second,
	}
}

func (k keepalive) readDeadline() time.Time {
	return time.Now().Add(k.ping + k.pong)
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	channels map[string]struct{}
}

func (c *wsClient) readLoop(ka keepalive, limit int64) {
	defer func() {
		c.hub.remove(c)
		c.conn.Close() //nolint:errcheck // already leaving
	}()

	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // refreshed below
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ka.readDeadline())
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Browsers may not answer protocol pings; any frame counts as alive.
		c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // next read reports failures
		c.handle(data)
	}
}

func (c *wsClient) writeLoop(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck // already leaving
	}()

	write := func(kind int, data []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(ka.pong)) //nolint:errcheck // write reports failures
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				write(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ticker.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *wsClient) handle(data []byte) {
	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		c.reply("", FrameError, map[string]string{"message": "invalid JSON message"})
		return
	}

	switch in.Type {
	case FramePing:
		c.reply(in.ID, FramePong, nil)
	case FrameSubscribe, FrameUnsubscribe:
		var list ChannelList
		if err := json.Unmarshal(in.Payload, &list); err != nil {
			c.reply(in.ID, FrameError, map[string]string{"message": "invalid " + in.Type + " payload"})
			return
		}
		if in.Type == FrameSubscribe {
			c.subscribe(list.Channels)
			c.reply(in.ID, FrameResponse, map[string]any{"subscribed": list.Channels})
		} else {
			c.unsubscribe(list.Channels)
			c.reply(in.ID, FrameResponse, map[string]any{"unsubscribed": list.Channels})
		}
	default:
		c.reply(in.ID, FrameError, map[string]string{"message": "unknown message type: " + in.Type})
	}
}

func (c *wsClient) subscribe(channels []string) {
	c.mu.Lock()
	for _, ch := range channels {
		c.channels[ch] = struct{}{}
	}
	c.mu.Unlock()
}

func (c *wsClient) unsubscribe(channels []string) {
	c.mu.Lock()
	for _, ch := range channels {
		delete(c.channels, ch)
	}
	c.mu.Unlock()
}

func (c *wsClient) wants(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.channels[ChannelAll]; ok {
		return true
	}
	_, ok := c.channels[channel]
	return ok
}

// enqueue drops data when the client is slow or already removed.
func (c *wsClient) enqueue(data []byte) {
	defer func() {
		recover() //nolint:errcheck // send on a queue closed by remove
	}()
	select {
	case c.send <- data:
	default:
	}
}

func (c *wsClient) reply(id, kind string, payload any) {
	data, err := json.Marshal(Frame{
		Type:      kind,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err == nil {
		c.enqueue(data)
	}
}
