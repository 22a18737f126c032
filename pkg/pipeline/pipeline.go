// Package pipeline owns every estimation stage and runs them in a fixed
// order once per detection frame.
//
// Detection ticks, external applies, resets and state reads all go through a
// single mutex. Telemetry is built under the lock and handed to sinks after
// it is released.
package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/internal/metrics"
	"github.com/teslashibe/motionsense/pkg/affect"
	"github.com/teslashibe/motionsense/pkg/coupling"
	"github.com/teslashibe/motionsense/pkg/follow"
	"github.com/teslashibe/motionsense/pkg/motion"
	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/protocol"
	"github.com/teslashibe/motionsense/pkg/session"
	"github.com/teslashibe/motionsense/pkg/sliders"
)

// ResetOptions controls a reset.
type ResetOptions struct {
	Echo         bool // Emit slider state immediately
	ClearCaches  bool // Drop cached keypoints
	StopTracking bool // Stop processing frames
}

// State is a render-side view of the pipeline.
type State struct {
	Sliders   map[sliders.Name]float64 `json:"sliders"`
	Estimates map[sliders.Name]float64 `json:"estimates"` // Last pose-derived targets, before blending
	Metrics   affect.State             `json:"metrics"`
	Follow    follow.Transform         `json:"follow"`
	Tracking  bool                     `json:"tracking"`
	Session   session.Status           `json:"session"`
}

// SessionProgress is the open session's status plus its running means.
type SessionProgress struct {
	session.Status
	Running *session.Snapshot `json:"running,omitempty"`
}

// Pipeline is the owning state object.
type Pipeline struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	tracking    bool
	velocity    *motion.Estimator
	mapper      *affect.Mapper
	coupler     *coupling.Coupler
	follower    *follow.Tracker
	store       *sliders.Store
	accumulator *session.Accumulator

	metricsLimiter *rate.Limiter
	slidersLimiter *rate.Limiter

	sinksMu sync.RWMutex
	sinks   []Sink
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics sets the Prometheus metrics (default metrics.DefaultMetrics).
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithSinks adds telemetry sinks.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, sinks...) }
}

// New creates a pipeline with tracking stopped and no session open.
func New(config Config, opts ...Option) *Pipeline {
	if config.Now == nil {
		config.Now = time.Now
	}
	p := &Pipeline{
		config:         config,
		logger:         log.Component("pipeline"),
		metrics:        metrics.DefaultMetrics,
		velocity:       motion.NewEstimator(config.Motion),
		mapper:         affect.NewMapper(config.Affect),
		coupler:        coupling.New(config.Coupling),
		follower:       follow.NewTracker(config.Follow),
		store:          sliders.New(config.Sliders),
		accumulator:    session.NewAccumulator(),
		metricsLimiter: rate.NewLimiter(rate.Limit(config.MetricsRate), 1),
		slidersLimiter: rate.NewLimiter(rate.Limit(config.SlidersRate), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddSink registers a telemetry sink.
func (p *Pipeline) AddSink(s Sink) {
	p.sinksMu.Lock()
	p.sinks = append(p.sinks, s)
	p.sinksMu.Unlock()
}

// Process runs one detection tick. It reports whether the frame was processed.
func (p *Pipeline) Process(frame pose.Frame) bool {
	p.metrics.FramesReceived.Inc()

	p.mu.Lock()
	if !p.tracking {
		p.mu.Unlock()
		p.metrics.FramesSkipped.WithLabelValues("tracking_stopped").Inc()
		return false
	}
	now := frame.Timestamp
	if now.IsZero() {
		now = p.config.Now()
		frame.Timestamp = now
	}
	result, ok := frame.Primary()
	if !ok {
		// Nobody in frame: keep metrics flowing so the follow transform
		// goes stale on displays too
		var msg *protocol.Message
		if p.metricsLimiter.AllowN(now, 1) {
			msg = p.metricsMessage(p.mapper.State(), now)
		}
		p.mu.Unlock()
		p.metrics.FramesSkipped.WithLabelValues("no_result").Inc()
		if msg != nil {
			p.emit(msg)
		}
		return false
	}
	start := time.Now()

	raw := p.velocity.Global(frame, result)
	regions := p.velocity.Regions(frame, result)
	state := p.mapper.Update(frame, result, raw, p.store)
	p.coupler.Update(frame, result, regions, p.store)
	p.follower.Update(frame, result, now)

	if p.accumulator.Active() && result.Score > p.config.SessionMinScore {
		p.accumulator.Add(p.sample(state, result), now)
		p.metrics.SessionSamples.Inc()
	}

	var out []*protocol.Message
	if p.metricsLimiter.AllowN(now, 1) {
		if msg := p.metricsMessage(state, now); msg != nil {
			out = append(out, msg)
		}
	}
	if p.slidersLimiter.AllowN(now, 1) {
		if msg := p.slidersMessage(); msg != nil {
			out = append(out, msg)
		}
	}
	p.metrics.Movement.Set(state.Velocity)
	p.mu.Unlock()

	p.metrics.TickDuration.Observe(time.Since(start).Seconds())
	p.emit(out...)
	return true
}

func (p *Pipeline) sample(state affect.State, result pose.Result) session.Sample {
	emotions := make(map[sliders.Name]float64, len(sliders.Emotions))
	for _, name := range sliders.Emotions {
		emotions[name] = p.store.Get(name)
	}
	return session.Sample{
		Structure:      state.Structure,
		Balance:        state.Balance,
		Posture:        state.PostureLean,
		Velocity:       state.Velocity,
		Emotions:       emotions,
		RegionWidths:   p.store.Vector(sliders.Regions),
		SegmentProfile: result.Filter(p.config.Affect.MinConfidence).SegmentProfile(),
	}
}

// SetTracking starts or stops frame processing. Stopping leaves every
// smoothed value as it is.
func (p *Pipeline) SetTracking(on bool) {
	p.mu.Lock()
	p.tracking = on
	p.mu.Unlock()
	p.logger.Info("tracking changed", "tracking", on)
}

// Tracking reports whether frames are being processed.
func (p *Pipeline) Tracking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracking
}

// BeginSession opens a new session, discarding any open one.
func (p *Pipeline) BeginSession() string {
	p.mu.Lock()
	id := p.accumulator.Begin(p.config.Now())
	p.mu.Unlock()

	p.metrics.SessionsActive.Set(1)
	p.logger.Info("session started", "id", id)
	return id
}

// EndSession closes the open session and broadcasts its snapshot.
func (p *Pipeline) EndSession() (session.Snapshot, error) {
	p.mu.Lock()
	snap, err := p.accumulator.End(p.config.Now())
	p.mu.Unlock()
	if err != nil {
		return session.Snapshot{}, err
	}

	p.metrics.SessionsActive.Set(0)
	p.metrics.SessionsFinished.Inc()
	p.logger.Info("session ended", "id", snap.ID, "samples", snap.Samples, "duration_s", snap.DurationSeconds)

	msg, err := protocol.NewSessionMessage(snap)
	if err != nil {
		p.logger.Warn("failed to encode session", "error", err)
		return snap, nil
	}
	p.emit(msg)
	return snap, nil
}

// SessionProgress reports the open session's progress. Running is nil when
// no session is open.
func (p *Pipeline) SessionProgress() SessionProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.config.Now()
	progress := SessionProgress{Status: p.accumulator.Status(now)}
	if snap, ok := p.accumulator.Peek(now); ok {
		progress.Running = &snap
	}
	return progress
}

// Apply blends external slider values. Unknown names and non-finite values are
// ignored. It returns the names written, which is empty during the reset
// cooldown.
func (p *Pipeline) Apply(values map[sliders.Name]float64, opts sliders.ApplyOptions) []sliders.Name {
	p.mu.Lock()
	written := p.store.Apply(values, p.config.Now(), opts)
	p.mu.Unlock()

	switch {
	case len(written) > 0:
		p.metrics.Applies.WithLabelValues("applied").Inc()
	case len(values) > 0:
		p.metrics.Applies.WithLabelValues("dropped").Inc()
	}
	return written
}

// Reset zeroes every slider and smoothed signal, deactivates follow and
// starts the external-apply cooldown.
func (p *Pipeline) Reset(opts ResetOptions) {
	p.mu.Lock()
	now := p.config.Now()
	p.store.Reset(now)
	p.mapper.Reset()
	if opts.ClearCaches {
		p.velocity.Reset()
	}
	p.follower.Deactivate()
	if opts.StopTracking {
		p.tracking = false
	}
	var echo []*protocol.Message
	if opts.Echo {
		if msg := p.slidersMessage(); msg != nil {
			echo = append(echo, msg)
		}
		if msg := p.metricsMessage(p.mapper.State(), now); msg != nil {
			echo = append(echo, msg)
		}
	}
	p.mu.Unlock()

	p.metrics.Resets.Inc()
	p.logger.Info("pipeline reset",
		"echo", opts.Echo,
		"clear_caches", opts.ClearCaches,
		"stop_tracking", opts.StopTracking)
	p.emit(echo...)
}

// Snapshot returns the current sliders, smoothed signals and follow transform.
func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.config.Now()
	transform, _ := p.follower.Current(now)
	return State{
		Sliders:   p.store.Values(),
		Estimates: p.mapper.Estimates(),
		Metrics:   p.mapper.State(),
		Follow:    transform,
		Tracking:  p.tracking,
		Session:   p.accumulator.Status(now),
	}
}

// Must be called with p.mu held.
func (p *Pipeline) metricsMessage(state affect.State, now time.Time) *protocol.Message {
	data := protocol.MetricsData{
		Velocity:     state.Velocity,
		Structure:    state.Structure,
		Balance:      state.Balance,
		PostureLean:  state.PostureLean,
		AvgY:         state.AvgY,
		TrackingLive: p.tracking,
	}
	if t, active := p.follower.Current(now); active {
		data.Follow = &protocol.TransformData{
			TranslateX: t.TranslateX,
			TranslateY: t.TranslateY,
			Rotation:   t.Rotation,
			Scale:      t.Scale,
			LastSeen:   t.LastSeen.UnixMilli(),
		}
	}
	msg, err := protocol.NewMetricsMessage(data)
	if err != nil {
		p.logger.Warn("failed to encode metrics", "error", err)
		return nil
	}
	return msg
}

// Must be called with p.mu held.
func (p *Pipeline) slidersMessage() *protocol.Message {
	values := p.store.Values()
	wire := make(map[string]float64, len(values))
	for name, v := range values {
		wire[string(name)] = v
		p.metrics.Sliders.WithLabelValues(string(name)).Set(v)
	}
	msg, err := protocol.NewSlidersMessage(wire)
	if err != nil {
		p.logger.Warn("failed to encode sliders", "error", err)
		return nil
	}
	return msg
}

func (p *Pipeline) emit(msgs ...*protocol.Message) {
	if len(msgs) == 0 {
		return
	}
	p.sinksMu.RLock()
	sinks := append([]Sink(nil), p.sinks...)
	p.sinksMu.RUnlock()

	for _, msg := range msgs {
		p.metrics.Emissions.WithLabelValues(string(msg.Type)).Inc()
		for _, s := range sinks {
			if err := s.Send(msg); err != nil {
				p.metrics.EmissionErrors.WithLabelValues(s.Name()).Inc()
				p.logger.Warn("telemetry sink failed", "sink", s.Name(), "type", msg.Type, "error", err)
			}
		}
	}
}

// SliderNames converts wire names to slider names, dropping unknown ones.
func SliderNames(values map[string]float64) map[sliders.Name]float64 {
	out := make(map[sliders.Name]float64, len(values))
	for k, v := range values {
		if name := sliders.Name(k); sliders.Known(name) {
			out[name] = v
		}
	}
	return out
}
