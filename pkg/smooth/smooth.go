// Package smooth holds the interpolation primitives shared by the signal
// stages: lerp, clamp, linear range mapping and exponential smoothing.
package smooth

import "math"

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// WrapAngle folds an angle in radians into [-π, π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// LerpAngle interpolates from a toward b along the shorter arc. The result
// is wrapped into [-π, π).
func LerpAngle(a, b, t float64) float64 {
	return WrapAngle(a + t*WrapAngle(b-a))
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Range linearly maps [InMin, InMax] onto [OutMin, OutMax] and clamps the
// result to the output interval. OutMin may be greater than OutMax for an
// inverted mapping.
type Range struct {
	InMin  float64 `json:"in_min"`
	InMax  float64 `json:"in_max"`
	OutMin float64 `json:"out_min"`
	OutMax float64 `json:"out_max"`
}

// Map applies the range to v. A zero-width input range maps everything to OutMin.
func (r Range) Map(v float64) float64 {
	if r.InMax == r.InMin || !Finite(v) {
		return r.OutMin
	}
	t := (v - r.InMin) / (r.InMax - r.InMin)
	out := r.OutMin + t*(r.OutMax-r.OutMin)
	lo, hi := r.OutMin, r.OutMax
	if lo > hi {
		lo, hi = hi, lo
	}
	return Clamp(out, lo, hi)
}

// EMA is an exponentially smoothed scalar: value = lerp(value, sample, Alpha).
type EMA struct {
	Alpha float64
	Value float64
}

// Update folds sample into the average and returns the new value.
func (e *EMA) Update(sample float64) float64 {
	if !Finite(sample) {
		return e.Value
	}
	e.Value = Lerp(e.Value, sample, e.Alpha)
	return e.Value
}

// Reset zeroes the smoothed value.
func (e *EMA) Reset() {
	e.Value = 0
}
