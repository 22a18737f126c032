// Package session summarises a tracking session as running means over every
// sampled signal.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/motionsense/pkg/sliders"
)

// Sample is one tick's worth of signals.
type Sample struct {
	Structure      float64
	Balance        float64
	Posture        float64
	Velocity       float64
	Emotions       map[sliders.Name]float64
	RegionWidths   []float64
	SegmentProfile []float64
}

// Snapshot is the summary produced when a session ends.
type Snapshot struct {
	ID              string                   `json:"id"`
	StartedAt       time.Time                `json:"started_at"`
	EndedAt         time.Time                `json:"ended_at"`
	LastSampleAt    time.Time                `json:"last_sample_at,omitzero"`
	DurationSeconds float64                  `json:"duration_s"`
	Samples         int                      `json:"samples"`
	Structure       float64                  `json:"structure"`
	Balance         float64                  `json:"balance"`
	Posture         float64                  `json:"posture"`
	Velocity        float64                  `json:"velocity"`
	Emotions        map[sliders.Name]float64 `json:"emotions"`
	RegionWidths    []float64                `json:"region_widths"`
	SegmentProfile  []float64                `json:"segment_profile"`
	FieldSamples    map[string]int           `json:"field_samples"`
	RegionSamples   []int                    `json:"region_samples"`  // Per-element counts
	SegmentSamples  []int                    `json:"segment_samples"` // Missing limbs are not counted
}

// Status describes the accumulator without ending it.
type Status struct {
	Active         bool    `json:"active"`
	ID             string  `json:"id,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_s"`
	Samples        int     `json:"samples"`
}

// Accumulator is the session state machine: idle → Begin → active → End → idle.
// It is not goroutine-safe; the owning pipeline serialises access.
type Accumulator struct {
	active    bool
	id        string
	startTime time.Time
	lastTime  time.Time
	samples   int

	structure runningMean
	balance   runningMean
	posture   runningMean
	velocity  runningMean
	emotions  map[sliders.Name]*runningMean
	regions   vectorMean
	segments  vectorMean
}

// NewAccumulator creates an idle accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{}
	a.clear()
	return a
}

// Begin resets every mean and counter and starts a new session. Calling Begin
// on an active session discards it; there is no resume.
func (a *Accumulator) Begin(now time.Time) string {
	a.clear()
	a.active = true
	a.id = uuid.New().String()
	a.startTime = now
	return a.id
}

// Add folds a sample into the running means. It is a no-op while idle.
func (a *Accumulator) Add(s Sample, now time.Time) {
	if !a.active {
		return
	}
	a.samples++
	a.lastTime = now

	a.structure.add(s.Structure)
	a.balance.add(s.Balance)
	a.posture.add(s.Posture)
	a.velocity.add(s.Velocity)
	for _, name := range sliders.Emotions {
		if v, ok := s.Emotions[name]; ok {
			a.emotions[name].add(v)
		}
	}
	a.regions.add(s.RegionWidths)
	a.segments.add(s.SegmentProfile)
}

// End snapshots the running means and returns to idle.
func (a *Accumulator) End(now time.Time) (Snapshot, error) {
	if !a.active {
		return Snapshot{}, ErrNotActive
	}
	snap := a.snapshot(now)
	a.active = false
	return snap, nil
}

// Active reports whether a session is open.
func (a *Accumulator) Active() bool {
	return a.active
}

// Status reports progress of the current session.
func (a *Accumulator) Status(now time.Time) Status {
	if !a.active {
		return Status{}
	}
	return Status{
		Active:         true,
		ID:             a.id,
		ElapsedSeconds: now.Sub(a.startTime).Seconds(),
		Samples:        a.samples,
	}
}

// Peek returns the running means of the open session without ending it.
func (a *Accumulator) Peek(now time.Time) (Snapshot, bool) {
	if !a.active {
		return Snapshot{}, false
	}
	return a.snapshot(now), true
}

func (a *Accumulator) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		ID:              a.id,
		StartedAt:       a.startTime,
		EndedAt:         now,
		LastSampleAt:    a.lastTime,
		DurationSeconds: now.Sub(a.startTime).Seconds(),
		Samples:         a.samples,
		Structure:       a.structure.mean,
		Balance:         a.balance.mean,
		Posture:         a.posture.mean,
		Velocity:        a.velocity.mean,
		Emotions:        make(map[sliders.Name]float64, len(sliders.Emotions)),
		RegionWidths:    a.regions.means(),
		SegmentProfile:  a.segments.means(),
		RegionSamples:   a.regions.counts(),
		SegmentSamples:  a.segments.counts(),
		FieldSamples: map[string]int{
			"structure": a.structure.n,
			"balance":   a.balance.n,
			"posture":   a.posture.n,
			"velocity":  a.velocity.n,
		},
	}
	for _, name := range sliders.Emotions {
		snap.Emotions[name] = a.emotions[name].mean
		snap.FieldSamples[string(name)] = a.emotions[name].n
	}
	return snap
}

func (a *Accumulator) clear() {
	a.active = false
	a.id = ""
	a.startTime = time.Time{}
	a.lastTime = time.Time{}
	a.samples = 0
	a.structure = runningMean{}
	a.balance = runningMean{}
	a.posture = runningMean{}
	a.velocity = runningMean{}
	a.emotions = make(map[sliders.Name]*runningMean, len(sliders.Emotions))
	for _, name := range sliders.Emotions {
		a.emotions[name] = &runningMean{}
	}
	a.regions = vectorMean{}
	a.segments = vectorMean{}
}
