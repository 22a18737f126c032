// Package web serves the control API, the display telemetry stream and the
// detector ingest websocket for a pipeline.
package web

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/internal/metrics"
	"github.com/teslashibe/motionsense/pkg/hub"
	"github.com/teslashibe/motionsense/pkg/ingest"
	"github.com/teslashibe/motionsense/pkg/pipeline"
)

// Server is the motionsense HTTP server
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	pipeline *pipeline.Pipeline

	// Telemetry fan-out to display clients
	display *hub.Hub

	// Detector and control websocket connections
	ingest *ingest.Hub
}

// Config holds server options
type Config struct {
	Addr      string
	AccessLog bool             // Log every HTTP request
	Metrics   *metrics.Metrics // Defaults to metrics.DefaultMetrics
}

// NewServer creates a server for p and registers the display hub as a
// telemetry sink.
func NewServer(config Config, p *pipeline.Pipeline) *Server {
	m := config.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	s := &Server{
		addr:     config.Addr,
		logger:   log.Component("web"),
		pipeline: p,
		display:  hub.New("display"),
		ingest:   ingest.NewHub(),
	}
	s.display.OnDrop(func(reason string) {
		m.EmissionErrors.WithLabelValues("display").Inc()
	})
	p.AddSink(s.display)

	s.ingest.OnPose(s.onPose)
	s.ingest.OnApply(s.onApply)
	s.ingest.OnReset(s.onReset)

	app := fiber.New(fiber.Config{
		AppName:               "motionsense",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if config.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/apply", s.handleApply)
	api.Post("/reset", s.handleReset)
	api.Post("/tracking/start", s.handleTrackingStart)
	api.Post("/tracking/stop", s.handleTrackingStop)
	api.Get("/session", s.handleSessionStatus)
	api.Post("/session/begin", s.handleSessionBegin)
	api.Post("/session/end", s.handleSessionEnd)
	s.ingest.RegisterAPIRoutes(api)

	// WebSocket routes
	s.ingest.RegisterRoutes(app)
	app.Use("/ws/display", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/display", websocket.New(s.handleDisplayWS))

	s.app = app
	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Display returns the display telemetry hub
func (s *Server) Display() *hub.Hub {
	return s.display
}

// Start runs the display hub and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.display.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
