package affect

import (
	"math"
	"testing"

	"github.com/teslashibe/motionsense/pkg/pose"
	"github.com/teslashibe/motionsense/pkg/sliders"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func kp(n pose.Name, x, y float64) pose.Keypoint {
	return pose.Keypoint{Name: n, X: x, Y: y, Confidence: 0.9}
}

// upright is a square-shouldered figure with arms hanging straight down.
func upright() pose.Result {
	return pose.Result{Score: 0.9, Keypoints: []pose.Keypoint{
		kp(pose.LeftShoulder, 100, 200),
		kp(pose.RightShoulder, 200, 200),
		kp(pose.LeftWrist, 100, 350),
		kp(pose.RightWrist, 200, 350),
		kp(pose.LeftHip, 110, 400),
		kp(pose.RightHip, 190, 400),
	}}
}

func without(r pose.Result, names ...pose.Name) pose.Result {
	drop := make(map[pose.Name]bool)
	for _, n := range names {
		drop[n] = true
	}
	var out pose.Result
	out.Score = r.Score
	for _, k := range r.Keypoints {
		if !drop[k.Name] {
			out.Keypoints = append(out.Keypoints, k)
		}
	}
	return out
}

var frame480 = pose.Frame{Width: 640, Height: 480}

func TestMapper_StructureDecaysGradually(t *testing.T) {
	m := NewMapper(DefaultConfig())

	for i := 0; i < 50; i++ {
		m.Update(frame480, upright(), 0, nil)
	}
	before := m.State().Structure
	if before <= 0 {
		t.Fatalf("expected positive structure, got %v", before)
	}

	m.Update(frame480, without(upright(), pose.LeftWrist), 0, nil)
	after := m.State().Structure

	want := before * (1 - DefaultConfig().StructureAlpha)
	if !floatEquals(after, want) {
		t.Errorf("structure after missing wrist = %v, want %v", after, want)
	}
}

func TestMapper_MissingGeometryKeepsPriorValues(t *testing.T) {
	m := NewMapper(DefaultConfig())
	tilted := upright()
	tilted.Keypoints[1].Y = 220 // right shoulder lower

	m.Update(frame480, tilted, 0, nil)
	prior := m.State()

	m.Update(frame480, without(tilted, pose.LeftHip, pose.RightHip), 0, nil)
	got := m.State()

	if got.Balance != prior.Balance {
		t.Errorf("balance changed without hips: %v -> %v", prior.Balance, got.Balance)
	}
	if got.PostureLean != prior.PostureLean {
		t.Errorf("lean changed without hips: %v -> %v", prior.PostureLean, got.PostureLean)
	}
	if got.AvgY == prior.AvgY {
		t.Error("avgY should still update when shoulders are present")
	}
}

func TestMapper_LeanClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LeanAlpha = 1
	m := NewMapper(cfg)

	// Hips 300px right of shoulders and only 100px lower: ~71.6°
	r := pose.Result{Keypoints: []pose.Keypoint{
		kp(pose.LeftShoulder, 100, 200),
		kp(pose.RightShoulder, 200, 200),
		kp(pose.LeftHip, 400, 300),
		kp(pose.RightHip, 500, 300),
	}}
	m.Update(frame480, r, 0, nil)

	if got := m.State().PostureLean; got != cfg.MaxLean {
		t.Errorf("lean = %v, want clamp at %v", got, cfg.MaxLean)
	}
}

func TestMapper_SadnessBoundResolvedOnce(t *testing.T) {
	m := NewMapper(DefaultConfig())

	m.Update(frame480, upright(), 0, nil)
	// avgY = 0.1 * 200 = 20 → 20/480*5
	if got := m.Estimates()[sliders.Sadness]; !floatEquals(got, 20.0/480*5) {
		t.Errorf("first sadness = %v", got)
	}

	m.Update(pose.Frame{Width: 1280, Height: 960}, upright(), 0, nil)
	avgY := 20 + 0.1*(200-20)
	if got := m.Estimates()[sliders.Sadness]; !floatEquals(got, avgY/480*5) {
		t.Errorf("second sadness = %v, want bound to stay at 480", got)
	}
}

func TestMapper_BurstDrivesAnger(t *testing.T) {
	m := NewMapper(DefaultConfig())

	for i := 0; i < 20; i++ {
		m.Update(frame480, upright(), 0, nil)
	}
	if m.Estimates()[sliders.Anger] != 0 {
		t.Errorf("anger at rest = %v, want 0", m.Estimates()[sliders.Anger])
	}

	m.Update(frame480, upright(), 0.05, nil)
	s := m.State()
	if s.Burst() <= 0 {
		t.Fatalf("expected burst after sudden motion, got %v", s.Burst())
	}
	if m.Estimates()[sliders.Anger] != 5 {
		t.Errorf("anger after burst = %v, want 5", m.Estimates()[sliders.Anger])
	}

	// Sustained motion lets the slow EMA catch up and the burst fade
	for i := 0; i < 200; i++ {
		m.Update(frame480, upright(), 0.05, nil)
	}
	if b := m.State().Burst(); b > 1e-3 {
		t.Errorf("burst under sustained motion = %v, want ~0", b)
	}
}

func TestMapper_BlendsIntoStoredValues(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(cfg)
	store := sliders.New(sliders.DefaultConfig())

	// No motion at all: calm estimate is 5
	m.Update(frame480, upright(), 0, store)
	if got := store.Get(sliders.Calm); !floatEquals(got, 5*cfg.BlendFactor) {
		t.Errorf("calm after one tick = %v, want %v", got, 5*cfg.BlendFactor)
	}

	// An externally raised value is pulled back toward the pose estimate
	store.Set(sliders.Anger, 4)
	m.Update(frame480, upright(), 0, store)
	if got := store.Get(sliders.Anger); !floatEquals(got, 4*(1-cfg.BlendFactor)) {
		t.Errorf("anger = %v, want %v", got, 4*(1-cfg.BlendFactor))
	}
}

func TestMapper_Reset(t *testing.T) {
	m := NewMapper(DefaultConfig())
	for i := 0; i < 5; i++ {
		m.Update(frame480, upright(), 0.02, nil)
	}
	m.Reset()

	if m.State() != (State{}) {
		t.Errorf("state after reset = %+v, want zero", m.State())
	}
}
