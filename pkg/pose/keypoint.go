// Package pose defines the detector-facing data model: named, confidence-scored
// 2D keypoints grouped into per-frame results.
package pose

import "time"

// Name identifies a body landmark. Values follow the 17-point COCO skeleton.
type Name string

const (
	Nose          Name = "nose"
	LeftEye       Name = "left_eye"
	RightEye      Name = "right_eye"
	LeftEar       Name = "left_ear"
	RightEar      Name = "right_ear"
	LeftShoulder  Name = "left_shoulder"
	RightShoulder Name = "right_shoulder"
	LeftElbow     Name = "left_elbow"
	RightElbow    Name = "right_elbow"
	LeftWrist     Name = "left_wrist"
	RightWrist    Name = "right_wrist"
	LeftHip       Name = "left_hip"
	RightHip      Name = "right_hip"
	LeftKnee      Name = "left_knee"
	RightKnee     Name = "right_knee"
	LeftAnkle     Name = "left_ankle"
	RightAnkle    Name = "right_ankle"
)

// Names lists every landmark in skeleton order.
var Names = []Name{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist,
	LeftHip, RightHip, LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

var known = func() map[Name]bool {
	m := make(map[Name]bool, len(Names))
	for _, n := range Names {
		m[n] = true
	}
	return m
}()

// Valid reports whether n is one of the 17 landmarks.
func (n Name) Valid() bool {
	return known[n]
}

// DefaultMinConfidence is the per-keypoint confidence a landmark needs to be used.
const DefaultMinConfidence = 0.5

// Keypoint is a single detected landmark in detector pixel space.
type Keypoint struct {
	Name       Name    `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"score"`
}

// Point returns the keypoint position.
func (k Keypoint) Point() Point {
	return Point{X: k.X, Y: k.Y}
}

// Result is one detected person.
type Result struct {
	Score     float64    `json:"score"` // Overall pose confidence (0-1)
	Keypoints []Keypoint `json:"keypoints"`
}

// Filter returns the positions of all known keypoints at or above minConf.
// When a name appears more than once the last passing entry wins.
func (r Result) Filter(minConf float64) Set {
	out := make(Set, len(r.Keypoints))
	for _, kp := range r.Keypoints {
		if !kp.Name.Valid() || kp.Confidence < minConf {
			continue
		}
		if !finite(kp.X) || !finite(kp.Y) {
			continue
		}
		out[kp.Name] = kp.Point()
	}
	return out
}

// Frame is everything the detector produced for one instant.
type Frame struct {
	Width     float64   // Detector-native frame width in pixels
	Height    float64   // Detector-native frame height in pixels
	Timestamp time.Time // Capture time
	Results   []Result  // Detected people, best first
}

// Primary returns the first result, which is the only one the pipeline tracks.
func (f Frame) Primary() (Result, bool) {
	if len(f.Results) == 0 {
		return Result{}, false
	}
	return f.Results[0], true
}

// Diagonal is the hypotenuse of the frame size, used to make displacements
// resolution independent.
func (f Frame) Diagonal() float64 {
	return Point{X: f.Width, Y: f.Height}.Norm()
}
