package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/motionsense/pkg/hub"
	"github.com/teslashibe/motionsense/pkg/pipeline"
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/protocol"
	"github.com/teslashibe/motionsense/pkg/session"
	"github.com/teslashibe/motionsense/pkg/sliders"
)

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"displays": s.display.ClientCount(),
		"time":     time.Now().UTC(),
	})
}

// handleState returns the render-side view of the pipeline
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.pipeline.Snapshot())
}

// handleApply blends external slider values
func (s *Server) handleApply(c *fiber.Ctx) error {
	var req protocol.ApplyData
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	written := s.apply(&req)
	return c.JSON(fiber.Map{
		"applied":      written,
		"cooling_down": len(req.Values) > 0 && len(written) == 0,
	})
}

// handleReset zeroes the pipeline. An empty body clears caches and keeps
// tracking running.
func (s *Server) handleReset(c *fiber.Ctx) error {
	req := protocol.ResetData{ClearCaches: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	s.reset(&req)
	return c.JSON(fiber.Map{"status": "reset"})
}

func (s *Server) handleTrackingStart(c *fiber.Ctx) error {
	s.pipeline.SetTracking(true)
	return c.JSON(fiber.Map{"tracking": true})
}

func (s *Server) handleTrackingStop(c *fiber.Ctx) error {
	s.pipeline.SetTracking(false)
	return c.JSON(fiber.Map{"tracking": false})
}

func (s *Server) handleSessionStatus(c *fiber.Ctx) error {
	return c.JSON(s.pipeline.SessionProgress())
}

func (s *Server) handleSessionBegin(c *fiber.Ctx) error {
	id := s.pipeline.BeginSession()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// handleSessionEnd returns the session summary
func (s *Server) handleSessionEnd(c *fiber.Ctx) error {
	snap, err := s.pipeline.EndSession()
	if errors.Is(err, session.ErrNotActive) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snap)
}

// handleDisplayWS streams telemetry to a display client, starting with the
// current slider state
func (s *Server) handleDisplayWS(c *websocket.Conn) {
	var initial []hub.Message
	state := s.pipeline.Snapshot()
	values := make(map[string]float64, len(state.Sliders))
	for name, v := range state.Sliders {
		values[string(name)] = v
	}
	if msg, err := protocol.NewSlidersMessage(values); err == nil {
		if data, err := msg.Bytes(); err == nil {
			initial = append(initial, hub.NewJSONMessage(data))
		}
	}

	client, err := hub.NewClient(s.display, c, initial...)
	if err != nil {
		s.logger.Debug("display rejected", "error", err)
		c.Close()
		return
	}
	client.Run()
}

func (s *Server) onPose(id string, frame pose.Frame) {
	s.pipeline.Process(frame)
}

func (s *Server) onApply(id string, req *protocol.ApplyData) {
	s.apply(req)
}

func (s *Server) onReset(id string, req *protocol.ResetData) {
	s.reset(req)
}

func (s *Server) apply(req *protocol.ApplyData) []sliders.Name {
	return s.pipeline.Apply(pipeline.SliderNames(req.Values), sliders.ApplyOptions{Force: req.Force})
}

func (s *Server) reset(req *protocol.ResetData) {
	s.pipeline.Reset(pipeline.ResetOptions{
		Echo:         req.Echo,
		ClearCaches:  req.ClearCaches,
		StopTracking: req.StopTracking,
	})
}
