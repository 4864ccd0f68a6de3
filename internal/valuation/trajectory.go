package valuation

// TrajectoryYears is the span of the synthesized price series.
const TrajectoryYears = 6

// FirstYear and LastYear bound the synthesized series; the last point is
// always the item's current price.
const (
	FirstYear = 2020
	LastYear  = 2025
)

// minGrowth guards the backward division against a degenerate divisor when
// variance cancels the growth base almost exactly.
const minGrowth = 0.01

// Synthesize produces a six-point backward price series, oldest first, with
// the newest point equal to currentPrice (2dp). Each backward step divides by
// a growth factor of 1+annualReturnPct/100 plus a volatility-scaled uniform
// variance, so the series looks plausible but is intentionally synthetic; it
// is not required to be monotonic.
func Synthesize(currentPrice, annualReturnPct float64, volatilityScore int, src Source) [TrajectoryYears]float64 {
	growthBase := 1 + annualReturnPct/100

	var prices [TrajectoryYears]float64
	prices[TrajectoryYears-1] = round2(currentPrice)

	for i := TrajectoryYears - 1; i > 0; i-- {
		variance := (src.Float64() - 0.5) * (float64(volatilityScore) / 10) * 0.2
		growth := growthBase + variance
		if growth < minGrowth {
			growth = minGrowth
		}
		prices[i-1] = round2(prices[i] / growth)
	}

	return prices
}
