package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
)

// fixedSource returns the same fraction for every Float64 call and clamps Intn.
type fixedSource struct {
	frac float64
	n    int
}

func (f *fixedSource) Intn(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func (f *fixedSource) Float64() float64 { return f.frac }

func TestRange_UsesFraction(t *testing.T) {
	src := &fixedSource{frac: 0.5}
	assert.InDelta(t, 5.5, dice.Range(src, 3.5, 7.5), 1e-12)
}

func TestRange_InvertedReturnsLo(t *testing.T) {
	assert.Equal(t, 4.0, dice.Range(&fixedSource{frac: 0.9}, 4, 2))
}

func TestPercent_Bounds(t *testing.T) {
	src := &fixedSource{frac: 0.999}
	assert.False(t, dice.Percent(src, 0))
	assert.True(t, dice.Percent(src, 100))
	assert.True(t, dice.Percent(&fixedSource{frac: 0.2}, 25))
	assert.False(t, dice.Percent(&fixedSource{frac: 0.3}, 25))
}

func TestPick_ReturnsIndexedElement(t *testing.T) {
	assert.Equal(t, "c", dice.Pick(&fixedSource{n: 2}, []string{"a", "b", "c"}))
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestCryptoSource_Property_IntnInRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestSources_Property_Float64InUnitInterval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		for _, src := range []dice.Source{dice.NewSeededSource(seed), dice.NewCryptoSource()} {
			f := src.Float64()
			assert.GreaterOrEqual(rt, f, 0.0)
			assert.Less(rt, f, 1.0)
		}
	})
}

func TestRange_Property_WithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(-100, 100).Draw(rt, "lo")
		width := rapid.Float64Range(0.001, 100).Draw(rt, "width")
		v := dice.Range(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), lo, lo+width)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, lo+width)
	})
}

func TestIntn_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(-1) })
}
