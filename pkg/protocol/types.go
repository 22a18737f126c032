package protocol

import (
	"time"

	"github.com/teslashibe/motionsense/pkg/pose"
)

// =============================================================================
// Detector → Pipeline
// =============================================================================

// PoseData is one detection frame
type PoseData struct {
	Width     float64       `json:"width"`  // Detector-native frame width
	Height    float64       `json:"height"` // Detector-native frame height
	Timestamp int64         `json:"ts,omitempty"`
	Results   []pose.Result `json:"results"`
}

// Frame converts the payload using the detector's own timestamp, falling back
// to fallback when it is missing. Recordings replay on this clock.
func (p PoseData) Frame(fallback time.Time) pose.Frame {
	if p.Timestamp > 0 {
		return p.FrameAt(time.UnixMilli(p.Timestamp))
	}
	return p.FrameAt(fallback)
}

// FrameAt converts the payload stamped with received, ignoring the detector
// timestamp. Live ingest uses this so every freshness check runs on the
// server clock.
func (p PoseData) FrameAt(received time.Time) pose.Frame {
	return pose.Frame{
		Width:     p.Width,
		Height:    p.Height,
		Timestamp: received,
		Results:   p.Results,
	}
}

// =============================================================================
// Control → Pipeline
// =============================================================================

// ApplyData carries a partial slider map
type ApplyData struct {
	Values map[string]float64 `json:"values"`
	Force  bool               `json:"force,omitempty"` // Ignore the reset cooldown
}

// ResetData carries reset flags
type ResetData struct {
	Echo         bool `json:"echo"`          // Broadcast the zeroed state immediately
	ClearCaches  bool `json:"clear_caches"`  // Drop keypoint caches
	StopTracking bool `json:"stop_tracking"` // Stop processing detection frames
}

// =============================================================================
// Pipeline → Display
// =============================================================================

// MetricsData carries the smoothed affect signals
type MetricsData struct {
	Velocity     float64        `json:"velocity"`
	Structure    float64        `json:"structure"`
	Balance      float64        `json:"balance"`
	PostureLean  float64        `json:"posture_lean"`
	AvgY         float64        `json:"avg_y"`
	Follow       *TransformData `json:"follow,omitempty"` // nil when the follow transform is stale
	TrackingLive bool           `json:"tracking"`
}

// TransformData is the render follow transform
type TransformData struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Rotation   float64 `json:"rotation"`
	Scale      float64 `json:"scale"`
	LastSeen   int64   `json:"last_seen"` // Unix milliseconds of the last body update
}

// SlidersData carries slider values by name
type SlidersData struct {
	Values map[string]float64 `json:"values"`
}

// =============================================================================
// Bidirectional
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
