package coupling

import (
	"github.com/teslashibe/motionsense/pkg/motion"
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/sliders"
	"github.com/teslashibe/motionsense/pkg/smooth"
)

// GeometryFunc measures a normalised body proportion. It returns false when
// the measurement is degenerate.
type GeometryFunc func(kps pose.Set) (float64, bool)

// RegionRule describes how one region slider is driven.
//
// value = clamp(MotionWeight·Motion(v) + GeometryWeight·GeometryRange(g), 0, 5),
// then blended into the slider with Smoothing.
type RegionRule struct {
	Region   motion.Region
	Slider   sliders.Name
	Required []pose.Name // Skip the update unless all of these are confident

	Motion       smooth.Range // Region velocity → [0,5]
	MotionWeight float64

	Geometry       GeometryFunc // nil for motion-only regions
	GeometryRange  smooth.Range
	GeometryWeight float64

	Smoothing float64 // Lerp factor toward the combined value
}

// SpineRule describes the lateral sway slider.
type SpineRule struct {
	Required  []pose.Name
	Range     smooth.Range // Normalised offset → pixels
	Smoothing float64
}

var regionMotion = smooth.Range{InMin: 0, InMax: 0.02, OutMin: 0, OutMax: 5}

// DefaultRules returns the standard region table.
func DefaultRules() []RegionRule {
	return []RegionRule{
		{
			Region:       motion.Head,
			Slider:       sliders.Head,
			Required:     []pose.Name{pose.Nose},
			Motion:       regionMotion,
			MotionWeight: 1,
			Smoothing:    0.15,
		},
		{
			Region:       motion.Neck,
			Slider:       sliders.Neck,
			Required:     []pose.Name{pose.Nose, pose.LeftShoulder, pose.RightShoulder},
			Motion:       regionMotion,
			MotionWeight: 1,
			Smoothing:    0.15,
		},
		{
			Region:         motion.ArmsHands,
			Slider:         sliders.ArmsHands,
			Required:       []pose.Name{pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist},
			Motion:         regionMotion,
			MotionWeight:   0.5,
			Geometry:       WristSpread,
			GeometryRange:  smooth.Range{InMin: 0.5, InMax: 3.0, OutMin: 0, OutMax: 5},
			GeometryWeight: 1,
			Smoothing:      0.20,
		},
		{
			Region:         motion.Chest,
			Slider:         sliders.Chest,
			Required:       []pose.Name{pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist},
			Motion:         regionMotion,
			MotionWeight:   0.4,
			Geometry:       ArmReach,
			GeometryRange:  smooth.Range{InMin: 0.5, InMax: 1.8, OutMin: 0, OutMax: 5},
			GeometryWeight: 0.6,
			Smoothing:      0.15,
		},
		{
			Region:         motion.Abdomen,
			Slider:         sliders.Abdomen,
			Required:       []pose.Name{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip},
			Motion:         regionMotion,
			MotionWeight:   0.4,
			Geometry:       TorsoLength,
			GeometryRange:  smooth.Range{InMin: 1.0, InMax: 2.0, OutMin: 5, OutMax: 0}, // shorter torso, wider abdomen
			GeometryWeight: 0.6,
			Smoothing:      0.10,
		},
		{
			Region:         motion.LegsFeet,
			Slider:         sliders.LegsFeet,
			Required:       []pose.Name{pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle},
			Motion:         regionMotion,
			MotionWeight:   0.5,
			Geometry:       Stance,
			GeometryRange:  smooth.Range{InMin: 0.5, InMax: 3.0, OutMin: 0, OutMax: 5},
			GeometryWeight: 0.5,
			Smoothing:      0.15,
		},
	}
}

// DefaultSpineRule returns the standard spine sway rule.
func DefaultSpineRule() SpineRule {
	return SpineRule{
		Required:  []pose.Name{pose.LeftShoulder, pose.RightShoulder},
		Range:     smooth.Range{InMin: -1, InMax: 1, OutMin: -sliders.DefaultSpineRange, OutMax: sliders.DefaultSpineRange},
		Smoothing: 0.15,
	}
}

// WristSpread is the wrist-to-wrist distance over the shoulder span.
func WristSpread(kps pose.Set) (float64, bool) {
	span, ok := kps.ShoulderSpan()
	if !ok || !kps.Has(pose.LeftWrist, pose.RightWrist) {
		return 0, false
	}
	return pose.Dist(kps[pose.LeftWrist], kps[pose.RightWrist]) / span, true
}

// ArmReach is the mean shoulder-to-same-side-wrist distance over the shoulder span.
func ArmReach(kps pose.Set) (float64, bool) {
	span, ok := kps.ShoulderSpan()
	if !ok || !kps.Has(pose.LeftWrist, pose.RightWrist) {
		return 0, false
	}
	left := pose.Dist(kps[pose.LeftShoulder], kps[pose.LeftWrist])
	right := pose.Dist(kps[pose.RightShoulder], kps[pose.RightWrist])
	return (left + right) / 2 / span, true
}

// TorsoLength is the shoulder-midpoint to hip-midpoint distance over the shoulder span.
func TorsoLength(kps pose.Set) (float64, bool) {
	span, ok := kps.ShoulderSpan()
	if !ok {
		return 0, false
	}
	hips, ok := kps.HipMid()
	if !ok {
		return 0, false
	}
	shoulders, _ := kps.ShoulderMid()
	return pose.Dist(shoulders, hips) / span, true
}

// Stance is the ankle-to-ankle distance over the hip span.
func Stance(kps pose.Set) (float64, bool) {
	span, ok := kps.HipSpan()
	if !ok || !kps.Has(pose.LeftAnkle, pose.RightAnkle) {
		return 0, false
	}
	return pose.Dist(kps[pose.LeftAnkle], kps[pose.RightAnkle]) / span, true
}
