// Package ingest accepts detector and control websocket connections and
// dispatches their messages to callbacks.
package ingest

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/protocol"
)

// Connection is a connected detector or control client
type Connection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send writes a message to the connection
func (c *Connection) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks inbound connections
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	logger *slog.Logger

	// Callbacks
	onPose  func(id string, frame pose.Frame)
	onApply func(id string, apply *protocol.ApplyData)
	onReset func(id string, reset *protocol.ResetData)

	// Stats
	messagesReceived atomic.Uint64
	framesReceived   atomic.Uint64
	parseErrors      atomic.Uint64
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]*Connection),
		logger: log.Component("ingest"),
	}
}

// OnPose sets the callback for detection frames
func (h *Hub) OnPose(callback func(id string, frame pose.Frame)) {
	h.mu.Lock()
	h.onPose = callback
	h.mu.Unlock()
}

// OnApply sets the callback for external slider applies
func (h *Hub) OnApply(callback func(id string, apply *protocol.ApplyData)) {
	h.mu.Lock()
	h.onApply = callback
	h.mu.Unlock()
}

// OnReset sets the callback for resets
func (h *Hub) OnReset(callback func(id string, reset *protocol.ResetData)) {
	h.mu.Lock()
	h.onReset = callback
	h.mu.Unlock()
}

// RegisterRoutes registers the detector websocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app fiber.Router) {
	app.Use("/ws/detector", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/detector", websocket.New(h.handleConn))
	app.Get("/ws/detector/:id", websocket.New(h.handleConn))
}

func (h *Hub) handleConn(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	conn := &Connection{
		ID:        id,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	h.mu.Lock()
	h.conns[id] = conn
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("detector connected", "id", id, "total", count)

	defer func() {
		h.mu.Lock()
		// A reconnect under the same ID may have replaced this entry
		if h.conns[id] == conn {
			delete(h.conns, id)
		}
		count := len(h.conns)
		h.mu.Unlock()
		h.logger.Info("detector disconnected", "id", id, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("read ended", "id", id, "error", err)
			return
		}

		conn.mu.Lock()
		conn.LastSeen = time.Now()
		conn.mu.Unlock()

		h.messagesReceived.Add(1)
		h.handleMessage(conn, data)
	}
}

// handleMessage dispatches one inbound message. Malformed messages are
// counted and skipped.
func (h *Hub) handleMessage(conn *Connection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.parseErrors.Add(1)
		h.logger.Warn("parse error", "id", conn.ID, "error", err)
		return
	}

	h.mu.RLock()
	poseCb := h.onPose
	applyCb := h.onApply
	resetCb := h.onReset
	h.mu.RUnlock()

	switch msg.Type {
	case protocol.TypePose:
		h.framesReceived.Add(1)
		data, err := msg.ParsePoseData()
		if err != nil {
			h.parseErrors.Add(1)
			h.logger.Warn("bad pose payload", "id", conn.ID, "error", err)
			return
		}
		if poseCb != nil {
			poseCb(conn.ID, data.FrameAt(time.Now()))
		}

	case protocol.TypeApply:
		data, err := msg.ParseApplyData()
		if err != nil {
			h.parseErrors.Add(1)
			return
		}
		if applyCb != nil {
			applyCb(conn.ID, data)
		}

	case protocol.TypeReset:
		data, err := msg.ParseResetData()
		if err != nil {
			h.parseErrors.Add(1)
			return
		}
		if resetCb != nil {
			resetCb(conn.ID, data)
		}

	case protocol.TypePing:
		ping, err := msg.ParsePingData()
		if err != nil {
			return
		}
		pong, err := protocol.NewPongMessage(*ping)
		if err != nil {
			return
		}
		if err := conn.Send(pong); err != nil {
			h.logger.Warn("pong failed", "id", conn.ID, "error", err)
		}
	}
}

// Count returns the number of open connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Get returns a connection by ID
func (h *Hub) Get(id string) *Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[id]
}

// Stats contains hub statistics
type Stats struct {
	Connections      int    `json:"connections"`
	MessagesReceived uint64 `json:"messages_received"`
	FramesReceived   uint64 `json:"frames_received"`
	ParseErrors      uint64 `json:"parse_errors"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		Connections:      h.Count(),
		MessagesReceived: h.messagesReceived.Load(),
		FramesReceived:   h.framesReceived.Load(),
		ParseErrors:      h.parseErrors.Load(),
	}
}

// Info describes a connection
type Info struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// Infos lists open connections
func (h *Hub) Infos() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]Info, 0, len(h.conns))
	for _, c := range h.conns {
		c.mu.Lock()
		infos = append(infos, Info{ID: c.ID, Connected: c.Connected, LastSeen: c.LastSeen})
		c.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers connection listing routes
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	detectors := api.Group("/detectors")

	detectors.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"detectors": h.Infos(),
			"count":     h.Count(),
		})
	})

	detectors.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})

	detectors.Get("/:id", func(c *fiber.Ctx) error {
		conn := h.Get(c.Params("id"))
		if conn == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "detector not found"})
		}
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return c.JSON(Info{ID: conn.ID, Connected: conn.Connected, LastSeen: conn.LastSeen})
	})
}
