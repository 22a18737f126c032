package session

import "github.com/teslashibe/motionsense/pkg/smooth"

// runningMean is a numerically stable streaming mean. Non-finite samples are
// skipped without counting.
type runningMean struct {
	n    int
	mean float64
}

func (m *runningMean) add(v float64) {
	if !smooth.Finite(v) {
		return
	}
	m.n++
	m.mean += (v - m.mean) / float64(m.n)
}

// vectorMean is an element-wise running mean whose length is set by the first
// sample. A sample of a different length restarts the accumulation at that
// length.
type vectorMean struct {
	elems []runningMean
}

func (v *vectorMean) add(xs []float64) {
	if len(xs) == 0 {
		return
	}
	if len(xs) != len(v.elems) {
		v.elems = make([]runningMean, len(xs))
	}
	for i, x := range xs {
		v.elems[i].add(x)
	}
}

func (v *vectorMean) means() []float64 {
	out := make([]float64, len(v.elems))
	for i, e := range v.elems {
		out[i] = e.mean
	}
	return out
}

func (v *vectorMean) counts() []int {
	out := make([]int, len(v.elems))
	for i, e := range v.elems {
		out[i] = e.n
	}
	return out
}
