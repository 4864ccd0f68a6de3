package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_NewestPointIsCurrentPrice(t *testing.T) {
	src := NewSeededSource(1)

	for _, price := range []float64{20.0, 500.0, 12345.678} {
		prices := Synthesize(price, 6.5, 4, src)
		assert.Equal(t, math.Round(price*100)/100, prices[TrajectoryYears-1])
	}
}

func TestSynthesize_ZeroVarianceIsGeometric(t *testing.T) {
	// A 0.5 draw cancels the variance term, leaving a pure geometric walk.
	prices := Synthesize(1000.0, 10.0, 5, fixedSource{0.5})

	require.Len(t, prices[:], TrajectoryYears)
	assert.Equal(t, 1000.0, prices[5])

	for i := TrajectoryYears - 1; i > 0; i-- {
		expected := math.Round(prices[i]/1.10*100) / 100
		assert.Equal(t, expected, prices[i-1], "step %d", i)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	a := Synthesize(500.0, 11.2, 3, NewSeededSource(99))
	b := Synthesize(500.0, 11.2, 3, NewSeededSource(99))
	assert.Equal(t, a, b)
}

func TestSynthesize_AllPointsPositive(t *testing.T) {
	src := NewSeededSource(3)

	for i := 0; i < 200; i++ {
		prices := Synthesize(50.0, 4.0, 10, src)
		for y, p := range prices {
			assert.Greater(t, p, 0.0, "year index %d", y)
		}
	}
}

func TestSynthesize_GrowthFloorOnDeepNegativeReturn(t *testing.T) {
	// Growth base 1 + (-120)/100 = -0.2; the floor must keep the divisor
	// positive so the walk cannot flip sign or divide by ~0.
	prices := Synthesize(100.0, -120.0, 1, fixedSource{0.5})

	for _, p := range prices {
		assert.Greater(t, p, 0.0)
	}
	// Dividing by the 0.01 floor inflates backward prices.
	assert.Greater(t, prices[0], prices[5])
}

func TestSynthesize_VolatilityWidensSteps(t *testing.T) {
	// An extreme draw at volatility 10 moves the step ratio by up to 10%
	// either side of the base; at volatility 1 by only 1%.
	calm := Synthesize(1000.0, 5.0, 1, fixedSource{0.999})
	wild := Synthesize(1000.0, 5.0, 10, fixedSource{0.999})

	calmRatio := calm[5] / calm[4]
	wildRatio := wild[5] / wild[4]
	assert.Greater(t, wildRatio, calmRatio)
	assert.InDelta(t, 1.05+0.0999, wildRatio, 0.005)
}
