package screening

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// FundamentalsScore grades growth and quality on 0..100. Each metric
// contributes a clamped linear band; a nil metric contributes half of
// its band, the explicit neutral for missing data.
func FundamentalsScore(f contracts.Fundamentals) float64 {
	var score float64

	// Revenue growth: 0..40% YoY spans the band.
	score += scoreOrNeutral(f.RevenueYoY, 0, 0.40, 30)
	// EPS growth: 0..50% YoY.
	score += scoreOrNeutral(f.EPSYoY, 0, 0.50, 25)
	// Capital efficiency: ROIC 5..25%.
	score += scoreOrNeutral(f.ROIC, 0.05, 0.25, 20)
	// FCF margin: 0..25%.
	score += scoreOrNeutral(f.FCFMargin, 0, 0.25, 15)
	// Leverage: lower is better, 4x down to 0x.
	score += scoreOrNeutral(f.DebtToEBITDA, 4, 0, 10)

	return score
}

// scoreOrNeutral applies Scale to a pointer metric, paying half the
// band when the metric is missing.
func scoreOrNeutral(v *float64, low, high, maxPoints float64) float64 {
	if v == nil {
		return maxPoints / 2
	}
	return Scale(*v, low, high, maxPoints)
}
