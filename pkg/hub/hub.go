package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/protocol"
)

// ErrorFunc is notified when the hub drops something, by reason.
type ErrorFunc func(reason string)

// Hub maintains the set of active display clients and broadcasts telemetry
// to them.
type Hub struct {
	name   string
	logger *slog.Logger

	// Registered clients
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan Message

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	onDrop ErrorFunc
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		logger:     log.Component("hub").With("hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnDrop sets a callback for dropped messages and clients. Must be called
// before Run.
func (h *Hub) OnDrop(fn ErrorFunc) {
	h.onDrop = fn
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing every
// client's queue. Run must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: its buffer is full
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
					h.dropped("slow_client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(msg Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.logger.Warn("broadcast queue full, dropping message")
		h.dropped("queue_full")
		return false
	}
}

// Name implements pipeline.Sink.
func (h *Hub) Name() string {
	return h.name
}

// Send encodes a protocol message and broadcasts it. A full queue is not an
// error; display delivery is best effort.
func (h *Hub) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) dropped(reason string) {
	if h.onDrop != nil {
		h.onDrop(reason)
	}
}
