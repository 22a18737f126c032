package pose

import "math"

// minSpan is the smallest body span (pixels) used as a normalising denominator.
const minSpan = 1.0

// Point is a 2D position in detector pixel space.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the distance between two points.
func Dist(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Centroid returns the mean of the given points.
func Centroid(pts ...Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{X: c.X / n, Y: c.Y / n}
}

// Set is a filtered keypoint lookup.
type Set map[Name]Point

// Has reports whether every name is present.
func (s Set) Has(names ...Name) bool {
	for _, n := range names {
		if _, ok := s[n]; !ok {
			return false
		}
	}
	return true
}

// ShoulderSpan returns the shoulder-to-shoulder distance, or false when a
// shoulder is missing or the span is degenerate.
func (s Set) ShoulderSpan() (float64, bool) {
	return s.span(LeftShoulder, RightShoulder)
}

// HipSpan returns the hip-to-hip distance, or false when degenerate.
func (s Set) HipSpan() (float64, bool) {
	return s.span(LeftHip, RightHip)
}

func (s Set) span(a, b Name) (float64, bool) {
	pa, okA := s[a]
	pb, okB := s[b]
	if !okA || !okB {
		return 0, false
	}
	d := Dist(pa, pb)
	if d < minSpan {
		return 0, false
	}
	return d, true
}

// ShoulderMid returns the midpoint of the shoulders.
func (s Set) ShoulderMid() (Point, bool) {
	if !s.Has(LeftShoulder, RightShoulder) {
		return Point{}, false
	}
	return Midpoint(s[LeftShoulder], s[RightShoulder]), true
}

// HipMid returns the midpoint of the hips.
func (s Set) HipMid() (Point, bool) {
	if !s.Has(LeftHip, RightHip) {
		return Point{}, false
	}
	return Midpoint(s[LeftHip], s[RightHip]), true
}

// Segment is a limb between two landmarks.
type Segment struct {
	From, To Name
}

// Segments are the limbs that make up a segment profile, in profile order.
var Segments = []Segment{
	{LeftShoulder, LeftElbow},
	{RightShoulder, RightElbow},
	{LeftElbow, LeftWrist},
	{RightElbow, RightWrist},
	{LeftHip, LeftKnee},
	{RightHip, RightKnee},
	{LeftKnee, LeftAnkle},
	{RightKnee, RightAnkle},
}

// SegmentProfile returns each limb length divided by the shoulder span.
// Limbs with a missing endpoint are NaN. Returns nil when the span is degenerate.
func (s Set) SegmentProfile() []float64 {
	span, ok := s.ShoulderSpan()
	if !ok {
		return nil
	}
	out := make([]float64, len(Segments))
	for i, seg := range Segments {
		a, okA := s[seg.From]
		b, okB := s[seg.To]
		if !okA || !okB {
			out[i] = math.NaN()
			continue
		}
		out[i] = Dist(a, b) / span
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
