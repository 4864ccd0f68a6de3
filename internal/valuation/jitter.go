package valuation

import (
	"math"
)

// Metrics are the per-item jittered values that feed trajectory synthesis and
// scoring, and are what gets persisted. The jitter runs exactly once per item;
// downstream steps must not re-draw these.
type Metrics struct {
	AnnualReturnPct float64
	VolatilityScore int
	LiquidityScore  int
}

// JitterMetrics perturbs a resolved profile into per-item metrics: return gets
// a uniform +/-1 shift after the classification boost, volatility and
// liquidity each shift by -1/0/+1 and clamp to [1,10].
func JitterMetrics(profile InvestmentProfile, multiplier float64, src Source) Metrics {
	annualReturn := round1(profile.BaseReturn*multiplier + (src.Float64()-0.5)*2)

	volatility := clampScore(profile.Volatility + int(math.Floor(src.Float64()*3)) - 1)
	liquidity := clampScore(profile.Liquidity + int(math.Floor(src.Float64()*3)) - 1)

	return Metrics{
		AnnualReturnPct: annualReturn,
		VolatilityScore: volatility,
		LiquidityScore:  liquidity,
	}
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
