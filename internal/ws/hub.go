package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riskdash/riskdash/internal/report"
)

const (
	// EventReport is the event name of every message the hub sends.
	EventReport = "report"

	writeTimeout = 10 * time.Second

	// pongWait is how long a client may stay silent before it is dropped.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBufSize = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event   string         `json:"event"`
	Summary report.Summary `json:"summary"`
	Data    *report.Report `json:"data"`
}

// Hub fans assembled reports out to connected WebSocket clients.
type Hub struct {
	build    func() *report.Report
	interval time.Duration
	onReport func(*report.Report)

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub that calls build for every report it sends.
func New(build func() *report.Report, interval time.Duration) *Hub {
	return &Hub{
		build:    build,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// OnReport registers fn to receive every report assembled by Run's ticker,
// whether or not any client is connected. Call it before Run.
func (h *Hub) OnReport(fn func(*report.Report)) { h.onReport = fn }

// Run assembles and broadcasts a report every interval until ctx is
// cancelled, then closes all client connections.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.tick()
		}
	}
}

// ServeHTTP upgrades the connection, sends a fresh report immediately, and
// blocks until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // upgrader already replied
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufSize)}
	if data, err := encode(h.build()); err == nil {
		c.send <- data // not yet registered, cannot block
	}
	h.register(c)
	defer h.unregister(c)

	go c.writePump()
	c.readPump()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) tick() {
	rep := h.build()
	if h.onReport != nil {
		h.onReport(rep)
	}
	if h.Count() == 0 {
		return
	}

	data, err := encode(rep)
	if err != nil {
		slog.Error("ws: encode report", "err", err)
		return
	}

	// Sends happen under the read lock so unregister cannot close a channel
	// mid-send; slow clients are dropped once it is released.
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("ws: dropping slow client", "remote", c.conn.RemoteAddr().String())
		h.unregister(c)
	}
}

func encode(rep *report.Report) ([]byte, error) {
	return json.Marshal(Message{Event: EventReport, Summary: rep.Summary(), Data: rep})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump forwards queued messages and pings to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump services pong and close frames; clients have nothing to say.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
