// Package relay forwards telemetry to an external display relay over a
// websocket, reconnecting with backoff when the link drops.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/protocol"
)

// Config holds relay client parameters.
type Config struct {
	URL string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MinBackoff       time.Duration
	MaxBackoff       time.Duration
	QueueSize        int
}

// DefaultConfig returns the standard relay configuration for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		MinBackoff:       500 * time.Millisecond,
		MaxBackoff:       30 * time.Second,
		QueueSize:        64,
	}
}

// Client is a best-effort telemetry forwarder. Send never blocks; when the
// queue is full or the link is down, messages are dropped.
type Client struct {
	config Config
	id     string
	logger *slog.Logger

	queue     chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	connected atomic.Bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewClient creates a client. Call Run to start forwarding.
func NewClient(config Config) *Client {
	id := uuid.New().String()
	return &Client{
		config: config,
		id:     id,
		logger: log.Component("relay").With("client_id", id),
		queue:  make(chan []byte, config.QueueSize),
		done:   make(chan struct{}),
	}
}

// ID returns the client identifier sent in the connect header.
func (c *Client) ID() string {
	return c.id
}

// Name implements pipeline.Sink.
func (c *Client) Name() string {
	return "relay"
}

// Send queues a message. It returns ErrClosed after Close; a full queue is
// counted as a drop, not an error.
func (c *Client) Send(msg *protocol.Message) error {
	if c.closed.Load() {
		return ErrClosed
	}
	data, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}
	select {
	case c.queue <- data:
	default:
		c.dropped.Add(1)
	}
	return nil
}

// Connected reports whether the link is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Stats returns counters.
func (c *Client) Stats() (sent, dropped uint64) {
	return c.sent.Load(), c.dropped.Load()
}

// Run dials the relay and forwards queued messages until ctx is cancelled or
// Close is called, reconnecting with exponential backoff.
func (c *Client) Run(ctx context.Context) {
	backoff := c.config.MinBackoff
	for {
		if c.stopped(ctx) {
			return
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Warn("relay dial failed", "url", c.config.URL, "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.config.MaxBackoff)
			continue
		}

		backoff = c.config.MinBackoff
		c.connected.Store(true)
		c.logger.Info("relay connected", "url", c.config.URL)

		err = c.pump(ctx, conn)
		c.connected.Store(false)
		conn.Close()
		if err != nil {
			c.logger.Warn("relay link lost", "error", err)
		}
	}
}

// Close stops Run and rejects further sends.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
	return nil
}

func (c *Client) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.HandshakeTimeout,
	}
	header := http.Header{}
	header.Set("X-Client-ID", c.id)

	conn, _, err := dialer.DialContext(ctx, c.config.URL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	return conn, nil
}

// pump writes queued messages and watches for the remote closing the link.
func (c *Client) pump(ctx context.Context, conn *websocket.Conn) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.closeFrame(conn)
			return nil
		case <-c.done:
			c.closeFrame(conn)
			return nil
		case err := <-readErr:
			return err
		case data := <-c.queue:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.dropped.Add(1)
				return err
			}
			c.sent.Add(1)
		}
	}
}

func (c *Client) closeFrame(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
