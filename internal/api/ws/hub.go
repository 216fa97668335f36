package ws

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
	maxMessage = 4096
)

// Message is a frame exchanged with a client
type Message struct {
	Type      string      `json:"type"`
	Event     interface{} `json:"event,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub fans desktop events out to every connected client. A client whose
// buffer fills up is disconnected instead of slowing the others.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{} // Protected by mu
	closed  bool                 // Protected by mu

	upgrader websocket.Upgrader
	now      func() time.Time
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates a hub accepting connections from the given origins.
// An empty list or "*" accepts any origin.
func NewHub(origins []string) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

// WithMetrics adds connection and message counters
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// WithLogger sets the logger
func (h *Hub) WithLogger(logger *zap.Logger) *Hub {
	if logger != nil {
		h.logger = logger.Named("ws")
	}
	return h
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event to every client. It never blocks.
func (h *Hub) Publish(event types.Event) {
	data, err := sonic.Marshal(Message{
		Type:      "event",
		Event:     event,
		Timestamp: h.now().Unix(),
	})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	h.mu.Lock()
	var dropped []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", string(event.Type))
	}
	for range dropped {
		h.logger.Warn("dropping slow client", zap.String("event", string(event.Type)))
	}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(cl) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	h.reply(cl, Message{Type: "system", Message: "connected to GML Portal desktop"})

	go h.writePump(cl)
	h.readPump(cl)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.mu.Unlock()
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// removeLocked must be called with mu held
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

// reply queues a message for one client
func (h *Hub) reply(c *client, msg Message) {
	msg.Timestamp = h.now().Unix()
	data, err := sonic.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out", msg.Type)
		}
	default:
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.reply(c, Message{Type: "error", Message: "invalid message"})
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "ping":
			h.reply(c, Message{Type: "pong"})
		default:
			h.reply(c, Message{Type: "error", Message: "unknown message type"})
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
