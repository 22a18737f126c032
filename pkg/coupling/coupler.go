// Package coupling turns region motion and body geometry into per-region
// width sliders and a spine sway value.
package coupling

import (
	"github.com/teslashibe/motionsense/pkg/motion"
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/sliders"
	"github.com/teslashibe/motionsense/pkg/smooth"
)

// Config holds coupler parameters.
type Config struct {
	MinConfidence float64
	Rules         []RegionRule
	Spine         SpineRule
}

// DefaultConfig returns the standard coupler configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence: pose.DefaultMinConfidence,
		Rules:         DefaultRules(),
		Spine:         DefaultSpineRule(),
	}
}

// Coupler applies the region table to each frame. It holds no state of its
// own; the smoothed values live in the slider store.
type Coupler struct {
	config Config
}

// New creates a coupler.
func New(config Config) *Coupler {
	return &Coupler{config: config}
}

// Update blends every region whose required keypoints are present toward its
// combined value. Regions with missing points keep their stored value.
// Returns the regions that were updated.
func (c *Coupler) Update(frame pose.Frame, result pose.Result, velocity map[motion.Region]float64, store *sliders.Store) []motion.Region {
	kps := result.Filter(c.config.MinConfidence)

	var updated []motion.Region
	for _, rule := range c.config.Rules {
		target, ok := combine(rule, kps, velocity[rule.Region])
		if !ok {
			continue
		}
		store.Blend(rule.Slider, target, rule.Smoothing)
		updated = append(updated, rule.Region)
	}

	if sway, ok := c.spineSway(frame, kps); ok {
		store.Blend(sliders.Spine, sway, c.config.Spine.Smoothing)
	}
	return updated
}

// combine evaluates one rule. It reports false when the region must be skipped.
func combine(rule RegionRule, kps pose.Set, velocity float64) (float64, bool) {
	if !kps.Has(rule.Required...) {
		return 0, false
	}
	value := rule.MotionWeight * rule.Motion.Map(velocity)
	if rule.Geometry != nil {
		g, ok := rule.Geometry(kps)
		if !ok {
			return 0, false
		}
		value += rule.GeometryWeight * rule.GeometryRange.Map(g)
	}
	return smooth.Clamp(value, sliders.MinValue, sliders.MaxValue), true
}

// spineSway is the shoulder midpoint's horizontal offset from the frame centre
// over the shoulder span, mapped into pixels.
func (c *Coupler) spineSway(frame pose.Frame, kps pose.Set) (float64, bool) {
	if frame.Width <= 0 || !kps.Has(c.config.Spine.Required...) {
		return 0, false
	}
	span, ok := kps.ShoulderSpan()
	if !ok {
		return 0, false
	}
	mid, _ := kps.ShoulderMid()
	offset := (mid.X - frame.Width/2) / span
	return c.config.Spine.Range.Map(offset), true
}
