// Package sliders is the shared named-value store that every stage of the
// pipeline writes into and the render loop reads from.
//
// A cell has two writers. Pose-driven stages call Blend every tick, and the
// external control path calls Apply. Both interpolate against the stored value,
// so each write sees the other's previous effect.
package sliders

import (
	"time"

	"github.com/teslashibe/motionsense/pkg/smooth"
)

// Name identifies a slider.
type Name string

// Emotions.
const (
	Anxiety Name = "anxiety"
	Sadness Name = "sadness"
	Joy     Name = "joy"
	Anger   Name = "anger"
	Fear    Name = "fear"
	Calm    Name = "calm"
)

// Body regions.
const (
	Head      Name = "head"
	Neck      Name = "neck"
	ArmsHands Name = "armsHands"
	Chest     Name = "chest"
	Abdomen   Name = "abdomen"
	LegsFeet  Name = "legsFeet"
)

// Spine is the lateral sway in pixels.
const Spine Name = "spine"

// Emotions lists the emotion sliders in canonical order.
var Emotions = []Name{Anxiety, Sadness, Joy, Anger, Fear, Calm}

// Regions lists the region-width sliders in canonical order.
var Regions = []Name{Head, Neck, ArmsHands, Chest, Abdomen, LegsFeet}

// All lists every slider.
var All = func() []Name {
	all := make([]Name, 0, len(Emotions)+len(Regions)+1)
	all = append(all, Emotions...)
	all = append(all, Regions...)
	return append(all, Spine)
}()

const (
	// MinValue and MaxValue bound emotion and region sliders.
	MinValue = 0.0
	MaxValue = 5.0

	// DefaultSpineRange bounds the spine slider to ±pixels.
	DefaultSpineRange = 40.0
)

// Config holds store parameters.
type Config struct {
	ApplyBlend    float64       // Interpolation weight for external applies
	ResetCooldown time.Duration // External applies are dropped this long after a reset
	SpineRange    float64       // Spine slider bound (±pixels)
}

// DefaultConfig returns the standard store configuration.
func DefaultConfig() Config {
	return Config{
		ApplyBlend:    0.35,
		ResetCooldown: 600 * time.Millisecond,
		SpineRange:    DefaultSpineRange,
	}
}

// ApplyOptions modifies an external apply.
type ApplyOptions struct {
	Force bool // Ignore the reset cooldown
}

// Store holds the current value of every slider. It is not goroutine-safe;
// the owning pipeline serialises access.
type Store struct {
	config        Config
	values        map[Name]float64
	cooldownUntil time.Time
}

// New creates a store with every slider at zero.
func New(config Config) *Store {
	s := &Store{
		config: config,
		values: make(map[Name]float64, len(All)),
	}
	for _, n := range All {
		s.values[n] = 0
	}
	return s
}

// Known reports whether name is a slider.
func Known(name Name) bool {
	for _, n := range All {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns a slider value. Unknown names return 0.
func (s *Store) Get(name Name) float64 {
	return s.values[name]
}

// Set assigns a slider directly, clamped to its bounds.
func (s *Store) Set(name Name, v float64) {
	if !Known(name) || !smooth.Finite(v) {
		return
	}
	s.values[name] = s.clamp(name, v)
}

// Blend moves a slider toward target by factor t and returns the new value.
// This is the pose-driven write path.
func (s *Store) Blend(name Name, target, t float64) float64 {
	if !Known(name) {
		return 0
	}
	s.Set(name, smooth.Lerp(s.values[name], target, t))
	return s.values[name]
}

// Apply blends each supplied value into its slider using the external blend
// factor. It is a no-op while the reset cooldown is active unless forced.
// Unknown names and non-finite values are ignored. Returns the names written.
func (s *Store) Apply(values map[Name]float64, now time.Time, opts ApplyOptions) []Name {
	if !opts.Force && s.CoolingDown(now) {
		return nil
	}
	var applied []Name
	for _, n := range All {
		v, ok := values[n]
		if !ok || !smooth.Finite(v) {
			continue
		}
		s.Blend(n, v, s.config.ApplyBlend)
		applied = append(applied, n)
	}
	return applied
}

// CoolingDown reports whether external applies are currently suppressed.
func (s *Store) CoolingDown(now time.Time) bool {
	return now.Before(s.cooldownUntil)
}

// Reset zeroes every slider and starts the cooldown window.
func (s *Store) Reset(now time.Time) {
	for n := range s.values {
		s.values[n] = 0
	}
	s.cooldownUntil = now.Add(s.config.ResetCooldown)
}

// Values returns a copy of every slider.
func (s *Store) Values() map[Name]float64 {
	out := make(map[Name]float64, len(s.values))
	for n, v := range s.values {
		out[n] = v
	}
	return out
}

// Vector returns the named sliders in order.
func (s *Store) Vector(names []Name) []float64 {
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = s.values[n]
	}
	return out
}

func (s *Store) clamp(name Name, v float64) float64 {
	if name == Spine {
		return smooth.Clamp(v, -s.config.SpineRange, s.config.SpineRange)
	}
	return smooth.Clamp(v, MinValue, MaxValue)
}
