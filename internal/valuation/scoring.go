package valuation

// Rating is the discrete letter grade assigned from the composite score.
type Rating string

const (
	RatingAPlus Rating = "A+"
	RatingA     Rating = "A"
	RatingBPlus Rating = "B+"
	RatingB     Rating = "B"
	RatingC     Rating = "C"
)

// Recommendation is the analyst action label derived from rating and return.
type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendHold Recommendation = "HOLD"
	// RecommendSell exists in the record taxonomy but the current mapping
	// never produces it; see Recommend.
	RecommendSell Recommendation = "SELL"
)

// Score computes the composite risk-adjusted heuristic: a Sharpe-like proxy
// of excess return over scaled volatility, plus a liquidity bonus. Volatility
// is guaranteed >= 1 by the jitter clamp, so the division is safe.
func Score(annualReturnPct float64, volatilityScore, liquidityScore int) float64 {
	sharpeProxy := (annualReturnPct - 2) / (float64(volatilityScore) * 1.5)
	liquidityBonus := float64(liquidityScore) / 20
	return sharpeProxy + liquidityBonus
}

// Rate maps a score onto the letter scale. Thresholds are inclusive and
// evaluated descending, so boundary scores land in the higher band.
func Rate(score float64) Rating {
	switch {
	case score >= 1.5:
		return RatingAPlus
	case score >= 1.2:
		return RatingA
	case score >= 0.9:
		return RatingBPlus
	case score >= 0.6:
		return RatingB
	default:
		return RatingC
	}
}

// Recommend maps rating and annual return onto an action. A-grade ratings are
// buys, a B+ with strong return upgrades to a buy, everything else holds.
// No input combination yields SELL under this mapping.
func Recommend(rating Rating, annualReturnPct float64) Recommendation {
	switch rating {
	case RatingAPlus, RatingA:
		return RecommendBuy
	case RatingBPlus:
		if annualReturnPct > 7 {
			return RecommendBuy
		}
		return RecommendHold
	default:
		return RecommendHold
	}
}

// ProjectFiveYear estimates the five-year return: five times the annual
// return with an independent uniform upside jitter of up to 20%.
func ProjectFiveYear(annualReturnPct float64, src Source) float64 {
	return round1(annualReturnPct * 5 * (1 + src.Float64()*0.2))
}
