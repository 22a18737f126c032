package coupling

import (
	"math"
	"math/rand"
	"testing"

	"github.com/teslashibe/motionsense/pkg/motion"
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

var frame = pose.Frame{Width: 600, Height: 800}

// standing is centred in the frame with a 100px shoulder span.
func standing() pose.Result {
	return pose.Result{Score: 0.9, Keypoints: []pose.Keypoint{
		kp(pose.Nose, 300, 100),
		kp(pose.LeftShoulder, 250, 200),
		kp(pose.RightShoulder, 350, 200),
		kp(pose.LeftWrist, 200, 350), // wrists 200px apart
		kp(pose.RightWrist, 400, 350),
		kp(pose.LeftHip, 270, 350),
		kp(pose.RightHip, 330, 350),
		kp(pose.LeftAnkle, 240, 600),
		kp(pose.RightAnkle, 360, 600),
	}}
}

func still() map[motion.Region]float64 {
	v := make(map[motion.Region]float64)
	for _, r := range motion.Regions {
		v[r] = 0
	}
	return v
}

func TestCoupler_ArmsGeometryPlusBoost(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())

	c.Update(frame, standing(), still(), store)

	// Wrist spread 2.0 spans → (2-0.5)/2.5*5 = 3, smoothed by 0.2
	if got := store.Get(sliders.ArmsHands); !floatEquals(got, 0.6) {
		t.Errorf("arms after one still tick = %v, want 0.6", got)
	}

	// Full-scale arm motion adds half of 5 on top of the base
	store.Set(sliders.ArmsHands, 0)
	v := still()
	v[motion.ArmsHands] = 1
	c.Update(frame, standing(), v, store)
	if got := store.Get(sliders.ArmsHands); !floatEquals(got, 0.2*5) {
		t.Errorf("arms with motion = %v, want %v (clamped 5.5 → 5, smoothed)", got, 0.2*5)
	}
}

func TestCoupler_MotionOnlyRegions(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())

	v := still()
	v[motion.Head] = 0.01 // half of the motion range
	c.Update(frame, standing(), v, store)

	if got := store.Get(sliders.Head); !floatEquals(got, 0.15*2.5) {
		t.Errorf("head = %v, want %v", got, 0.15*2.5)
	}
	if got := store.Get(sliders.Neck); got != 0 {
		t.Errorf("neck = %v, want 0", got)
	}
}

func TestCoupler_MissingKeypointsKeepPriorValue(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())

	v := still()
	v[motion.LegsFeet] = 0.02
	c.Update(frame, standing(), v, store)
	prior := store.Get(sliders.LegsFeet)
	if prior == 0 {
		t.Fatal("expected legs to have moved off zero")
	}

	noAnkles := standing()
	noAnkles.Keypoints = noAnkles.Keypoints[:len(noAnkles.Keypoints)-2]
	updated := c.Update(frame, noAnkles, v, store)

	if got := store.Get(sliders.LegsFeet); got != prior {
		t.Errorf("legs = %v, want unchanged %v", got, prior)
	}
	for _, r := range updated {
		if r == motion.LegsFeet {
			t.Error("legs should not be reported as updated")
		}
	}
}

func TestCoupler_LowConfidenceCountsAsMissing(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())
	store.Set(sliders.Head, 3)

	r := standing()
	r.Keypoints[0].Confidence = 0.2 // nose
	c.Update(frame, r, still(), store)

	if got := store.Get(sliders.Head); got != 3 {
		t.Errorf("head = %v, want 3", got)
	}
}

func TestCoupler_AbdomenInverted(t *testing.T) {
	c := New(DefaultConfig())

	short := sliders.New(sliders.DefaultConfig())
	c.Update(frame, standing(), still(), short) // torso 150px / 100px span = 1.5

	tall := standing()
	for i := range tall.Keypoints {
		if tall.Keypoints[i].Name == pose.LeftHip || tall.Keypoints[i].Name == pose.RightHip {
			tall.Keypoints[i].Y = 390 // torso 1.9 spans
		}
	}
	long := sliders.New(sliders.DefaultConfig())
	c.Update(frame, tall, still(), long)

	if short.Get(sliders.Abdomen) <= long.Get(sliders.Abdomen) {
		t.Errorf("shorter torso should widen abdomen: short=%v long=%v",
			short.Get(sliders.Abdomen), long.Get(sliders.Abdomen))
	}
}

func TestCoupler_SpineSway(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())

	c.Update(frame, standing(), still(), store)
	if got := store.Get(sliders.Spine); got != 0 {
		t.Errorf("centred spine = %v, want 0", got)
	}

	// Shift the body one shoulder span to the right
	shifted := standing()
	for i := range shifted.Keypoints {
		shifted.Keypoints[i].X += 100
	}
	c.Update(frame, shifted, still(), store)
	if got := store.Get(sliders.Spine); !floatEquals(got, 0.15*40) {
		t.Errorf("shifted spine = %v, want %v", got, 0.15*40)
	}
}

func TestCoupler_ValuesStayInBounds(t *testing.T) {
	c := New(DefaultConfig())
	store := sliders.New(sliders.DefaultConfig())
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		r := pose.Result{Score: 1}
		for _, n := range pose.Names {
			r.Keypoints = append(r.Keypoints, pose.Keypoint{
				Name:       n,
				X:          rng.Float64()*2000 - 500,
				Y:          rng.Float64()*2000 - 500,
				Confidence: rng.Float64(),
			})
		}
		v := make(map[motion.Region]float64)
		for _, reg := range motion.Regions {
			v[reg] = rng.Float64()
		}
		c.Update(frame, r, v, store)

		for _, n := range sliders.Regions {
			if got := store.Get(n); got < 0 || got > 5 {
				t.Fatalf("tick %d: %s = %v out of [0,5]", i, n, got)
			}
		}
	}
}
