package affect

import (
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/smooth"
)

// Config holds all tunable parameters for affect mapping.
type Config struct {
	MinConfidence float64 // Keypoints below this are ignored

	// Structure: mean(shoulder → opposite wrist) / shoulder span, mapped to [0,1]
	StructureRange smooth.Range

	// Per-signal smoothing factors (0-1, higher = more weight on new reading)
	StructureAlpha float64
	BalanceAlpha   float64
	LeanAlpha      float64
	AvgYAlpha      float64

	// Velocity EMAs. The blend EMA is the reported movement value; fast and
	// slow together detect bursts.
	VelocityAlpha float64
	FastAlpha     float64
	SlowAlpha     float64

	// MaxLean bounds the posture lean angle (±degrees)
	MaxLean float64

	// Signal → emotion estimate ranges, each mapping into [0,5].
	// SadnessRange.InMax of 0 means "use the frame height", resolved once.
	JoyRange     smooth.Range // structure
	AnxietyRange smooth.Range // balance (pixels)
	FearRange    smooth.Range // |lean| (degrees)
	SadnessRange smooth.Range // average shoulder y (pixels)
	CalmRange    smooth.Range // movement velocity, inverted
	AngerRange   smooth.Range // burst = max(0, fast - slow)

	// BlendFactor is the weight of each tick's estimate against the stored emotion.
	BlendFactor float64
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		MinConfidence: pose.DefaultMinConfidence,

		StructureRange: smooth.Range{InMin: 0.8, InMax: 2.2, OutMin: 0, OutMax: 1},

		StructureAlpha: 0.15,
		BalanceAlpha:   0.15,
		LeanAlpha:      0.15,
		AvgYAlpha:      0.10,

		VelocityAlpha: 0.20,
		FastAlpha:     0.50,
		SlowAlpha:     0.05,

		MaxLean: 45,

		JoyRange:     smooth.Range{InMin: 0, InMax: 1, OutMin: 0, OutMax: 5},
		AnxietyRange: smooth.Range{InMin: 0, InMax: 60, OutMin: 0, OutMax: 5},
		FearRange:    smooth.Range{InMin: 0, InMax: 30, OutMin: 0, OutMax: 5},
		SadnessRange: smooth.Range{InMin: 0, InMax: 0, OutMin: 0, OutMax: 5},
		CalmRange:    smooth.Range{InMin: 0, InMax: 0.015, OutMin: 5, OutMax: 0},
		AngerRange:   smooth.Range{InMin: 0.001, InMax: 0.012, OutMin: 0, OutMax: 5},

		BlendFactor: 0.25,
	}
}
