package agents

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Single-tenant deployment; the browser client connects from the same
	// origin the server serves.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans progress updates out to the WebSocket connections watching each
// run.
type Hub struct {
	log *zap.Logger

	mu          sync.RWMutex
	connections map[string]map[*connection]struct{}
}

type connection struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *connection) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		log:         logging.L(),
		connections: make(map[string]map[*connection]struct{}),
	}
}

// Publish delivers an update to every connection watching its run. A
// connection whose buffer is full is dropped rather than blocking the run.
func (h *Hub) Publish(update ProgressUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.log.Error("marshal progress update", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections[update.RunID] {
		select {
		case c.send <- data:
		default:
			c.closeSend()
			delete(h.connections[update.RunID], c)
		}
	}
}

// WatcherCount reports how many connections watch a run.
func (h *Hub) WatcherCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[runID])
}

func (h *Hub) register(runID string, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[runID] == nil {
		h.connections[runID] = make(map[*connection]struct{})
	}
	h.connections[runID][c] = struct{}{}
}

func (h *Hub) unregister(runID string, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.connections[runID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			c.closeSend()
		}
		if len(conns) == 0 {
			delete(h.connections, runID)
		}
	}
}

// Serve upgrades the request and streams the run's updates until the client
// disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, runID string) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &connection{conn: ws, send: make(chan []byte, 64)}
	h.register(runID, c)
	h.log.Info("progress watcher connected", zap.String("run_id", runID))

	go c.writePump()
	go func() {
		defer func() {
			h.unregister(runID, c)
			ws.Close()
			h.log.Info("progress watcher disconnected", zap.String("run_id", runID))
		}()
		ws.SetReadLimit(4096)
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			ws.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (c *connection) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
