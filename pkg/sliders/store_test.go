package sliders

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ApplyBlendsAgainstCurrent(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now()

	applied := s.Apply(map[Name]float64{Anxiety: 5}, now, ApplyOptions{})

	require.Equal(t, []Name{Anxiety}, applied)
	assert.InDelta(t, 1.75, s.Get(Anxiety), 1e-9)

	s.Apply(map[Name]float64{Anxiety: 5}, now, ApplyOptions{})
	assert.InDelta(t, 1.75+0.35*(5-1.75), s.Get(Anxiety), 1e-9)
}

func TestStore_ApplyIgnoredDuringCooldown(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now()

	s.Set(Joy, 3)
	s.Set(Head, 2)
	s.Reset(now)

	applied := s.Apply(map[Name]float64{Joy: 5, Head: 5, Spine: 20}, now.Add(100*time.Millisecond), ApplyOptions{})
	assert.Empty(t, applied)
	for _, n := range All {
		assert.Zero(t, s.Get(n), "slider %s", n)
	}

	// After the window closes applies go through again
	s.Apply(map[Name]float64{Joy: 5}, now.Add(601*time.Millisecond), ApplyOptions{})
	assert.InDelta(t, 1.75, s.Get(Joy), 1e-9)
}

func TestStore_ForceBypassesCooldown(t *testing.T) {
	s := New(DefaultConfig())
	now := time.Now()
	s.Reset(now)

	s.Apply(map[Name]float64{Calm: 5}, now, ApplyOptions{Force: true})
	assert.InDelta(t, 1.75, s.Get(Calm), 1e-9)
}

func TestStore_ApplyIgnoresUnknownAndNonFinite(t *testing.T) {
	s := New(DefaultConfig())

	applied := s.Apply(map[Name]float64{"volume": 5, Fear: math.NaN(), Sadness: 2}, time.Now(), ApplyOptions{})

	assert.Equal(t, []Name{Sadness}, applied)
	assert.Zero(t, s.Get(Fear))
	_, present := s.Values()["volume"]
	assert.False(t, present)
}

func TestStore_ValuesStayInBounds(t *testing.T) {
	s := New(DefaultConfig())

	for i := 0; i < 50; i++ {
		s.Blend(Anger, 1e6, 0.9)
		s.Blend(Chest, -1e6, 0.9)
		s.Blend(Spine, 1e6, 0.9)
	}

	assert.Equal(t, MaxValue, s.Get(Anger))
	assert.Equal(t, MinValue, s.Get(Chest))
	assert.Equal(t, DefaultSpineRange, s.Get(Spine))
}

func TestStore_Vector(t *testing.T) {
	s := New(DefaultConfig())
	s.Set(Head, 1)
	s.Set(LegsFeet, 4)

	assert.Equal(t, []float64{1, 0, 0, 0, 0, 4}, s.Vector(Regions))
}
