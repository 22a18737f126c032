package session

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/teslashibe/motionsense/pkg/sliders"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAccumulator_RegionWidthExample(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)

	a.Add(Sample{RegionWidths: []float64{1, 2, 3, 4, 5, 6}}, t0)
	a.Add(Sample{RegionWidths: []float64{3, 2, 1, 0, 1, 2}}, t0)
	a.Add(Sample{RegionWidths: []float64{2, 2, 2, 2, 2, 2}}, t0)

	snap, err := a.End(t0.Add(time.Second))
	require.NoError(t, err)

	// Element 4 is (5+1+2)/3
	want := []float64{2, 2, 2, 2, 8.0 / 3, 10.0 / 3}
	if diff := cmp.Diff(want, snap.RegionWidths, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("region widths mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, snap.Samples)
	assert.Equal(t, 1.0, snap.DurationSeconds)
}

func TestAccumulator_MeanMatchesArithmeticMean(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)
	rng := rand.New(rand.NewSource(42))

	var finite []float64
	for i := 0; i < 1000; i++ {
		v := rng.NormFloat64()*10 + 3
		switch i % 97 {
		case 0:
			v = math.NaN()
		case 1:
			v = math.Inf(-1)
		default:
			finite = append(finite, v)
		}
		a.Add(Sample{Velocity: v}, t0)
	}

	snap, err := a.End(t0)
	require.NoError(t, err)
	assert.InDelta(t, stat.Mean(finite, nil), snap.Velocity, 1e-9)
	assert.Equal(t, len(finite), snap.FieldSamples["velocity"])
	assert.Equal(t, 1000, snap.Samples)
}

func TestAccumulator_StableForLargeN(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)

	const n = 1_000_000
	for i := 0; i < n; i++ {
		a.Add(Sample{Structure: 1e300, Balance: float64(i % 2)}, t0)
	}

	snap, err := a.End(t0)
	require.NoError(t, err)
	assert.Equal(t, 1e300, snap.Structure, "a naive sum would overflow")
	assert.InDelta(t, 0.5, snap.Balance, 1e-9)
}

func TestAccumulator_BeginAlwaysResets(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)
	a.Add(Sample{
		Structure:    4,
		Emotions:     map[sliders.Name]float64{sliders.Joy: 3},
		RegionWidths: []float64{1, 1},
	}, t0)

	a.Begin(t0.Add(time.Minute))
	snap, err := a.End(t0.Add(time.Minute))
	require.NoError(t, err)

	assert.Zero(t, snap.Samples)
	assert.Zero(t, snap.Structure)
	assert.Zero(t, snap.Emotions[sliders.Joy])
	assert.Empty(t, snap.RegionWidths)
	for field, n := range snap.FieldSamples {
		assert.Zero(t, n, "field %s", field)
	}
}

func TestAccumulator_AddWhileIdleIsNoop(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)
	a.Add(Sample{Posture: 2}, t0)
	before, ok := a.Peek(t0)
	require.True(t, ok)
	_, err := a.End(t0)
	require.NoError(t, err)

	a.Add(Sample{Posture: 100, RegionWidths: []float64{9}}, t0)

	assert.False(t, a.Active())
	assert.Equal(t, before.Posture, a.posture.mean)
	assert.Equal(t, 1, a.posture.n)
	assert.Equal(t, 1, a.samples)
	assert.Empty(t, a.regions.elems)
}

func TestAccumulator_EndWhileIdle(t *testing.T) {
	a := NewAccumulator()
	_, err := a.End(t0)
	assert.ErrorIs(t, err, ErrNotActive)

	a.Begin(t0)
	_, err = a.End(t0)
	require.NoError(t, err)
	_, err = a.End(t0)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestAccumulator_VectorLengthChangeResetsOnlyThatField(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)

	a.Add(Sample{Velocity: 2, RegionWidths: []float64{4, 4}, SegmentProfile: []float64{1, 1, 1}}, t0)
	a.Add(Sample{Velocity: 4, RegionWidths: []float64{1, 2, 3}, SegmentProfile: []float64{3, 3, 3}}, t0)

	snap, err := a.End(t0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, snap.RegionWidths)
	assert.Equal(t, []int{1, 1, 1}, snap.RegionSamples)
	assert.Equal(t, []float64{2, 2, 2}, snap.SegmentProfile)
	assert.Equal(t, 3.0, snap.Velocity)
}

func TestAccumulator_VectorElementsSkipNonFinite(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)

	a.Add(Sample{SegmentProfile: []float64{1, math.NaN()}}, t0)
	a.Add(Sample{SegmentProfile: []float64{3, 5}}, t0)

	snap, err := a.End(t0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, snap.SegmentProfile)
	assert.Equal(t, []int{2, 1}, snap.SegmentSamples)
}

func TestAccumulator_EmotionsAreIndependent(t *testing.T) {
	a := NewAccumulator()
	a.Begin(t0)

	a.Add(Sample{Emotions: map[sliders.Name]float64{sliders.Joy: 4, sliders.Fear: 1}}, t0)
	a.Add(Sample{Emotions: map[sliders.Name]float64{sliders.Joy: 2}}, t0)

	snap, err := a.End(t0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, snap.Emotions[sliders.Joy])
	assert.Equal(t, 1.0, snap.Emotions[sliders.Fear])
	assert.Equal(t, 2, snap.FieldSamples["joy"])
	assert.Equal(t, 1, snap.FieldSamples["fear"])
	assert.Len(t, snap.Emotions, 6)
}

func TestAccumulator_Status(t *testing.T) {
	a := NewAccumulator()
	assert.Equal(t, Status{}, a.Status(t0))

	id := a.Begin(t0)
	a.Add(Sample{}, t0)
	st := a.Status(t0.Add(2 * time.Second))

	assert.True(t, st.Active)
	assert.Equal(t, id, st.ID)
	assert.Equal(t, 2.0, st.ElapsedSeconds)
	assert.Equal(t, 1, st.Samples)
}
