// Package affect derives posture signals from keypoint geometry and maps them,
// together with movement velocity, onto six emotion intensities.
package affect

import (
	"math"

	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/sliders"
	"github.com/teslashibe/motionsense/pkg/smooth"
)

// State is the smoothed affect signal set. It persists across ticks.
type State struct {
	Structure    float64 `json:"structure"`
	Balance      float64 `json:"balance"`
	PostureLean  float64 `json:"posture_lean"`
	AvgY         float64 `json:"avg_y"`
	Velocity     float64 `json:"velocity"`
	FastVelocity float64 `json:"fast_velocity"`
	SlowVelocity float64 `json:"slow_velocity"`
}

// Burst is the fast-over-slow velocity excess: sudden acceleration as opposed
// to sustained motion.
func (s State) Burst() float64 {
	return math.Max(0, s.FastVelocity-s.SlowVelocity)
}

// Mapper owns the affect state and writes emotion sliders.
type Mapper struct {
	config Config

	structure smooth.EMA
	balance   smooth.EMA
	lean      smooth.EMA
	avgY      smooth.EMA
	velocity  smooth.EMA
	fast      smooth.EMA
	slow      smooth.EMA

	// sadness has its upper input bound resolved from the first frame height
	sadness         smooth.Range
	sadnessResolved bool

	estimates map[sliders.Name]float64
}

// NewMapper creates a mapper with zeroed state.
func NewMapper(config Config) *Mapper {
	return &Mapper{
		config:          config,
		structure:       smooth.EMA{Alpha: config.StructureAlpha},
		balance:         smooth.EMA{Alpha: config.BalanceAlpha},
		lean:            smooth.EMA{Alpha: config.LeanAlpha},
		avgY:            smooth.EMA{Alpha: config.AvgYAlpha},
		velocity:        smooth.EMA{Alpha: config.VelocityAlpha},
		fast:            smooth.EMA{Alpha: config.FastAlpha},
		slow:            smooth.EMA{Alpha: config.SlowAlpha},
		sadness:         config.SadnessRange,
		sadnessResolved: config.SadnessRange.InMax != 0,
		estimates:       make(map[sliders.Name]float64, len(sliders.Emotions)),
	}
}

// Update folds one frame into the affect state and then blends the resulting
// estimates into the emotion sliders. rawVelocity is the frame's global
// velocity. Emotion writes read the stored value, which an external apply may
// have moved since the previous tick.
func (m *Mapper) Update(frame pose.Frame, result pose.Result, rawVelocity float64, store *sliders.Store) State {
	kps := result.Filter(m.config.MinConfidence)

	// Structure falls back to 0 so the smoothed value decays rather than freezes
	m.structure.Update(m.rawStructure(kps))

	if b, ok := rawBalance(kps); ok {
		m.balance.Update(b)
	}
	if l, ok := rawLean(kps); ok {
		m.lean.Update(smooth.Clamp(l, -m.config.MaxLean, m.config.MaxLean))
	}
	if y, ok := rawAvgY(kps); ok {
		m.avgY.Update(y)
	}

	m.velocity.Update(rawVelocity)
	m.fast.Update(rawVelocity)
	m.slow.Update(rawVelocity)

	m.resolveSadness(frame)
	state := m.State()

	m.estimates[sliders.Joy] = m.config.JoyRange.Map(state.Structure)
	m.estimates[sliders.Anxiety] = m.config.AnxietyRange.Map(state.Balance)
	m.estimates[sliders.Fear] = m.config.FearRange.Map(math.Abs(state.PostureLean))
	m.estimates[sliders.Sadness] = m.sadness.Map(state.AvgY)
	m.estimates[sliders.Calm] = m.config.CalmRange.Map(state.Velocity)
	m.estimates[sliders.Anger] = m.config.AngerRange.Map(state.Burst())

	if store != nil {
		for _, name := range sliders.Emotions {
			store.Blend(name, m.estimates[name], m.config.BlendFactor)
		}
	}
	return state
}

// State returns the current smoothed signals.
func (m *Mapper) State() State {
	return State{
		Structure:    m.structure.Value,
		Balance:      m.balance.Value,
		PostureLean:  m.lean.Value,
		AvgY:         m.avgY.Value,
		Velocity:     m.velocity.Value,
		FastVelocity: m.fast.Value,
		SlowVelocity: m.slow.Value,
	}
}

// Estimates returns the last per-emotion pose estimates.
func (m *Mapper) Estimates() map[sliders.Name]float64 {
	out := make(map[sliders.Name]float64, len(m.estimates))
	for k, v := range m.estimates {
		out[k] = v
	}
	return out
}

// Reset zeroes every smoothed signal. The resolved sadness bound is kept.
func (m *Mapper) Reset() {
	m.structure.Reset()
	m.balance.Reset()
	m.lean.Reset()
	m.avgY.Reset()
	m.velocity.Reset()
	m.fast.Reset()
	m.slow.Reset()
	clear(m.estimates)
}

func (m *Mapper) resolveSadness(frame pose.Frame) {
	if m.sadnessResolved || frame.Height <= 0 {
		return
	}
	m.sadness.InMax = frame.Height
	m.sadnessResolved = true
}

// rawStructure is the mean of each shoulder's distance to the opposite wrist
// over the shoulder span, mapped into [0,1]. Missing points give 0.
func (m *Mapper) rawStructure(kps pose.Set) float64 {
	if !kps.Has(pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist) {
		return 0
	}
	span, ok := kps.ShoulderSpan()
	if !ok {
		return 0
	}
	left := pose.Dist(kps[pose.LeftShoulder], kps[pose.RightWrist])
	right := pose.Dist(kps[pose.RightShoulder], kps[pose.LeftWrist])
	ratio := (left + right) / 2 / span
	return m.config.StructureRange.Map(ratio)
}

// rawBalance is the vertical misalignment of the shoulders plus the hips.
func rawBalance(kps pose.Set) (float64, bool) {
	if !kps.Has(pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip) {
		return 0, false
	}
	shoulders := math.Abs(kps[pose.LeftShoulder].Y - kps[pose.RightShoulder].Y)
	hips := math.Abs(kps[pose.LeftHip].Y - kps[pose.RightHip].Y)
	return shoulders + hips, true
}

// rawLean is the angle in degrees between the shoulder→hip midline and
// vertical. Positive means the hips sit to the right of the shoulders.
func rawLean(kps pose.Set) (float64, bool) {
	top, ok := kps.ShoulderMid()
	if !ok {
		return 0, false
	}
	bottom, ok := kps.HipMid()
	if !ok {
		return 0, false
	}
	d := bottom.Sub(top)
	if d.Norm() < 1 {
		return 0, false
	}
	return math.Atan2(d.X, d.Y) * 180 / math.Pi, true
}

// rawAvgY is the mean shoulder height in pixels (larger is lower).
func rawAvgY(kps pose.Set) (float64, bool) {
	if !kps.Has(pose.LeftShoulder, pose.RightShoulder) {
		return 0, false
	}
	return (kps[pose.LeftShoulder].Y + kps[pose.RightShoulder].Y) / 2, true
}
