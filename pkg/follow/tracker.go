// Package follow maintains a smoothed 2D transform that lets the render side
// follow the tracked body: translation of the torso centroid from the frame
// centre, torso rotation and shoulder-width scale.
package follow

import (
	"math"
	"time"

	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/smooth"
)

// Config holds follow tracker parameters.
type Config struct {
	MinConfidence float64

	BaselineShoulderWidth float64 // Pixels of shoulder span that map to scale 1
	MinScale              float64
	MaxScale              float64

	// Smoothing factors (0-1, higher = more weight on new reading)
	TranslateSmoothing float64
	RotationSmoothing  float64
	ScaleSmoothing     float64

	// FreshnessWindow is how long a transform stays valid without an update
	FreshnessWindow time.Duration
}

// DefaultConfig returns the standard follow configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence:         pose.DefaultMinConfidence,
		BaselineShoulderWidth: 180,
		MinScale:              0.6,
		MaxScale:              1.8,
		TranslateSmoothing:    0.25,
		RotationSmoothing:     0.20,
		ScaleSmoothing:        0.20,
		FreshnessWindow:       300 * time.Millisecond,
	}
}

// Transform is the render-side follow transform.
type Transform struct {
	TranslateX float64   `json:"translate_x"` // Pixels from frame centre
	TranslateY float64   `json:"translate_y"`
	Rotation   float64   `json:"rotation"` // Radians in [-π, π), 0 when upright
	Scale      float64   `json:"scale"`
	LastSeen   time.Time `json:"last_seen"`
}

// Identity is the untransformed, centred state used when tracking is stale.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Tracker owns the smoothed transform.
type Tracker struct {
	config  Config
	current Transform
	active  bool
}

// NewTracker creates a tracker at the identity transform.
func NewTracker(config Config) *Tracker {
	return &Tracker{config: config, current: Identity()}
}

// Update folds a frame into the transform. It needs both shoulders and both
// hips; otherwise the transform and its timestamp are left alone.
// Returns whether the update succeeded.
func (t *Tracker) Update(frame pose.Frame, result pose.Result, now time.Time) bool {
	kps := result.Filter(t.config.MinConfidence)
	if !kps.Has(pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip) {
		return false
	}
	span, ok := kps.ShoulderSpan()
	if !ok {
		return false
	}

	centroid := pose.Centroid(kps[pose.LeftShoulder], kps[pose.RightShoulder], kps[pose.LeftHip], kps[pose.RightHip])
	shoulders, _ := kps.ShoulderMid()
	hips, _ := kps.HipMid()
	d := hips.Sub(shoulders)

	target := Transform{
		TranslateX: centroid.X - frame.Width/2,
		TranslateY: centroid.Y - frame.Height/2,
		Rotation:   smooth.WrapAngle(math.Atan2(d.Y, d.X) - math.Pi/2),
		Scale:      smooth.Clamp(span/t.config.BaselineShoulderWidth, t.config.MinScale, t.config.MaxScale),
	}

	t.current.TranslateX = smooth.Lerp(t.current.TranslateX, target.TranslateX, t.config.TranslateSmoothing)
	t.current.TranslateY = smooth.Lerp(t.current.TranslateY, target.TranslateY, t.config.TranslateSmoothing)
	t.current.Rotation = smooth.LerpAngle(t.current.Rotation, target.Rotation, t.config.RotationSmoothing)
	t.current.Scale = smooth.Lerp(t.current.Scale, target.Scale, t.config.ScaleSmoothing)
	t.current.LastSeen = now
	t.active = true
	return true
}

// Current returns the transform and whether it is active. A transform that
// has not been updated within the freshness window is inactive, and the
// identity transform is returned in its place.
func (t *Tracker) Current(now time.Time) (Transform, bool) {
	if !t.active || now.Sub(t.current.LastSeen) > t.config.FreshnessWindow {
		return Identity(), false
	}
	return t.current, true
}

// Deactivate marks the transform inactive until the next successful update.
func (t *Tracker) Deactivate() {
	t.active = false
}
