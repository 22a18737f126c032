package pipeline

import (
	"time"

	"github.com/teslashibe/motionsense/pkg/affect"
	"github.com/teslashibe/motionsense/pkg/coupling"
	"github.com/teslashibe/motionsense/pkg/follow"
	"github.com/teslashibe/motionsense/pkg/motion"
	"github.com/teslashibe/motionsense/pkg/sliders"
)

// Config aggregates every stage's configuration.
type Config struct {
	Motion   motion.Config
	Affect   affect.Config
	Coupling coupling.Config
	Follow   follow.Config
	Sliders  sliders.Config

	// SessionMinScore is the overall pose confidence a frame must exceed to be
	// sampled into an open session
	SessionMinScore float64

	// Telemetry rates (Hz)
	MetricsRate float64
	SlidersRate float64

	// Now is the wall clock used for external writes and frames without a
	// timestamp. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Motion:          motion.DefaultConfig(),
		Affect:          affect.DefaultConfig(),
		Coupling:        coupling.DefaultConfig(),
		Follow:          follow.DefaultConfig(),
		Sliders:         sliders.DefaultConfig(),
		SessionMinScore: 0.25,
		MetricsRate:     12.5,
		SlidersRate:     4,
		Now:             time.Now,
	}
}
