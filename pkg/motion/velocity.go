// Package motion estimates normalised keypoint velocity, globally and per
// anatomical region, from consecutive detector frames.
package motion

import (
	"github.com/teslashibe/motionsense/pkg/pose"
)

// Region is an anatomical grouping of keypoints.
type Region string

const (
	Head      Region = "head"
	Neck      Region = "neck"
	ArmsHands Region = "armsHands"
	Chest     Region = "chest"
	Abdomen   Region = "abdomen"
	LegsFeet  Region = "legsFeet"
)

// Regions lists every region in display order.
var Regions = []Region{Head, Neck, ArmsHands, Chest, Abdomen, LegsFeet}

// RegionParts is the keypoint subset whose motion defines each region's velocity.
var RegionParts = map[Region][]pose.Name{
	Head:      {pose.Nose, pose.LeftEye, pose.RightEye, pose.LeftEar, pose.RightEar},
	Neck:      {pose.Nose, pose.LeftShoulder, pose.RightShoulder},
	ArmsHands: {pose.LeftShoulder, pose.RightShoulder, pose.LeftElbow, pose.RightElbow, pose.LeftWrist, pose.RightWrist},
	Chest:     {pose.LeftShoulder, pose.RightShoulder, pose.LeftElbow, pose.RightElbow},
	Abdomen:   {pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip},
	LegsFeet:  {pose.LeftHip, pose.RightHip, pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle},
}

// Config holds velocity estimation parameters.
type Config struct {
	MinConfidence float64 // Keypoints below this are ignored
}

// DefaultConfig returns the standard estimator configuration.
func DefaultConfig() Config {
	return Config{MinConfidence: pose.DefaultMinConfidence}
}

// Estimator turns consecutive frames into velocity magnitudes normalised by
// the frame diagonal. It keeps two independent caches: one for the global
// velocity and one per part for region velocities, so the two never interfere.
//
// Cached positions only change when a part passes the confidence filter.
// Parts that drop out keep their last position, so a brief occlusion does not
// cause a velocity spike when the part reappears.
type Estimator struct {
	config Config
	global pose.Set
	parts  pose.Set
}

// NewEstimator creates an estimator with empty caches.
func NewEstimator(config Config) *Estimator {
	return &Estimator{
		config: config,
		global: make(pose.Set),
		parts:  make(pose.Set),
	}
}

// Global returns the mean normalised displacement of every part seen in both
// this frame and the cache, then updates the global cache. A frame with no
// confident keypoints returns 0 and leaves the cache untouched.
func (e *Estimator) Global(frame pose.Frame, result pose.Result) float64 {
	current := result.Filter(e.config.MinConfidence)
	if len(current) == 0 {
		return 0
	}
	v := meanDisplacement(current, e.global, nil, frame.Diagonal())
	merge(e.global, current)
	return v
}

// Regions returns the velocity of every region and updates the per-part cache.
// All regions are measured against the cache as it stood before this frame.
func (e *Estimator) Regions(frame pose.Frame, result pose.Result) map[Region]float64 {
	out := make(map[Region]float64, len(Regions))
	current := result.Filter(e.config.MinConfidence)
	if len(current) == 0 {
		for _, r := range Regions {
			out[r] = 0
		}
		return out
	}
	diag := frame.Diagonal()
	for _, r := range Regions {
		out[r] = meanDisplacement(current, e.parts, RegionParts[r], diag)
	}
	merge(e.parts, current)
	return out
}

// Reset clears both caches.
func (e *Estimator) Reset() {
	clear(e.global)
	clear(e.parts)
}

// meanDisplacement averages |current - previous| / diag over matched parts,
// restricted to names when names is non-nil.
func meanDisplacement(current, previous pose.Set, names []pose.Name, diag float64) float64 {
	if diag <= 0 {
		return 0
	}
	var sum float64
	var n int
	add := func(name pose.Name) {
		cur, ok := current[name]
		if !ok {
			return
		}
		prev, ok := previous[name]
		if !ok {
			return
		}
		sum += pose.Dist(cur, prev) / diag
		n++
	}
	if names == nil {
		for name := range current {
			add(name)
		}
	} else {
		for _, name := range names {
			add(name)
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func merge(dst, src pose.Set) {
	for name, p := range src {
		dst[name] = p
	}
}
