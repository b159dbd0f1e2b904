package positions

import (
	"fmt"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Reviewer recommends a trailing-stop policy per held position by its
// unrealized gain band. The bands ratchet: a bigger gain always means
// at least as tight a policy, so a winner never walks all the way back
// to a loss.
type Reviewer struct {
	logger *logger.Logger
}

// NewReviewer creates a reviewer.
func NewReviewer(log *logger.Logger) *Reviewer {
	return &Reviewer{logger: log}
}

// Review evaluates one position at the current price. series is used
// for the moving-average stop on larger winners; it may be short, in
// which case the fixed-percent stop applies alone.
func (r *Reviewer) Review(pos contracts.Position, price float64, series contracts.PriceSeries) contracts.PositionReview {
	gain := pos.GainPct(price)

	review := contracts.PositionReview{
		Symbol:  pos.Symbol,
		GainPct: gain,
	}

	switch {
	case gain < 5:
		review.Policy = contracts.StopHold
		review.Note = "gain under 5%, position still proving itself"
	case gain < 10:
		review.Policy = contracts.StopBreakeven
		review.StopPrice = pos.CostBasis
		review.Note = "stop moved to entry, trade is now risk free"
	case gain < 20:
		review.Policy = contracts.StopTrail
		review.StopPrice = r.trailStop(pos, series, 5)
		review.Note = "trailing stop locks in +5% or the 50-day average"
	case gain < 30:
		review.Policy = contracts.StopPartial
		review.StopPrice = r.trailStop(pos, series, 10)
		review.Note = "consider trimming a third; stop locks in +10%"
	default:
		review.Policy = contracts.StopTight
		review.StopPrice = r.trailStop(pos, series, gain-10)
		review.Note = fmt.Sprintf("large winner, tight trail under +%.0f%%", gain-10)
	}

	r.logger.WithFields(map[string]interface{}{
		"symbol": pos.Symbol,
		"gain":   gain,
		"policy": review.Policy,
	}).Debug("Reviewed position")
	return review
}

// trailStop returns the higher of the fixed gain lock and the 50-day
// average. Taking the max keeps the ratchet monotone.
func (r *Reviewer) trailStop(pos contracts.Position, series contracts.PriceSeries, lockGainPct float64) float64 {
	stop := pos.CostBasis * (1 + lockGainPct/100)
	if ma, ok := screening.SMA(series.Closes(), 50); ok && ma > stop {
		stop = ma
	}
	return stop
}
