package longterm

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// CompounderInput bundles the data for one long-term equity candidate.
type CompounderInput struct {
	Symbol       string
	Series       contracts.PriceSeries
	Fundamentals contracts.Fundamentals
	// MoatEvidence counts independent qualitative moat markers
	// (pricing power, switching costs, network effects), 0..3+.
	MoatEvidence int
}

// CompounderScorer grades multi-year holdings: durable growth first,
// capital efficiency second, persistence of the trend third, with a
// small bonus for documented moat evidence. The base bands sum to 100
// and the moat bonus can push past it.
type CompounderScorer struct {
	cfg    strategyconfig.Compounder
	rs     *screening.RelativeStrengthScorer
	logger *logger.Logger
}

// NewCompounderScorer wires the scorer. rs carries the benchmark for
// relative-strength persistence.
func NewCompounderScorer(cfg strategyconfig.Compounder, rs *screening.RelativeStrengthScorer, log *logger.Logger) *CompounderScorer {
	return &CompounderScorer{cfg: cfg, rs: rs, logger: log}
}

// Score produces the compounder composite. Missing fundamentals pay
// half their band.
func (s *CompounderScorer) Score(in CompounderInput) contracts.CompositeScore {
	score := contracts.CompositeScore{Symbol: in.Symbol}
	if last, ok := in.Series.Last(); ok {
		score.AsOf = last.Date
	}

	score.AddFactor("growth", s.growth(in.Fundamentals), s.cfg.GrowthMax)
	score.AddFactor("capital_efficiency", s.efficiency(in.Fundamentals), s.cfg.EfficiencyMax)
	score.AddFactor("durability", s.durability(in), s.cfg.DurabilityMax)

	moatPts := screening.Scale(float64(in.MoatEvidence), 0, 3, s.cfg.MoatBonusMax)
	score.AddFactor("moat_bonus", moatPts, s.cfg.MoatBonusMax)

	s.logger.WithFields(map[string]interface{}{
		"symbol": in.Symbol,
		"score":  score.Total,
	}).Debug("Calculated compounder score")
	return score
}

// Qualified reports whether the score clears the long-term threshold.
func (s *CompounderScorer) Qualified(score contracts.CompositeScore) bool {
	return score.Total >= s.cfg.Threshold
}

// growth favors multi-year CAGR over a single hot year. The 3-year
// revenue CAGR carries the most weight; the 5-year line and EPS CAGR
// confirm.
func (s *CompounderScorer) growth(f contracts.Fundamentals) float64 {
	max := s.cfg.GrowthMax
	var pts float64
	pts += scaleOrNeutral(f.RevenueCAGR3Y, 0.05, 0.30, max*0.4)
	pts += scaleOrNeutral(f.RevenueCAGR5Y, 0.05, 0.25, max*0.25)
	pts += scaleOrNeutral(f.EPSCAGR3Y, 0.05, 0.35, max*0.25)
	pts += scaleOrNeutral(f.RDToSales, 0.02, 0.20, max*0.1)
	return pts
}

// efficiency rewards a real spread of ROIC over the cost of capital
// and the cash conversion to fund reinvestment internally.
func (s *CompounderScorer) efficiency(f contracts.Fundamentals) float64 {
	max := s.cfg.EfficiencyMax

	var spreadPts float64
	if f.ROIC != nil && f.WACC != nil {
		spread := *f.ROIC - *f.WACC
		spreadPts = screening.Scale(spread, 0, 0.15, max*0.6)
	} else {
		spreadPts = max * 0.6 / 2
	}

	fcfPts := scaleOrNeutral(f.FCFMargin, 0, 0.25, max*0.4)
	return spreadPts + fcfPts
}

// durability blends balance-sheet strength with trend persistence
// against the benchmark.
func (s *CompounderScorer) durability(in CompounderInput) float64 {
	max := s.cfg.DurabilityMax
	f := in.Fundamentals

	var pts float64
	pts += scaleOrNeutral(f.DebtToEBITDA, 3, 0, max*0.3)
	pts += scaleOrNeutral(f.InterestCoverage, 2, 10, max*0.2)

	rsPts := max * 0.5 / 2
	if p, err := s.rs.Score(in.Series, max*0.5); err == nil {
		rsPts = p
	}
	return pts + rsPts
}

func scaleOrNeutral(v *float64, low, high, maxPoints float64) float64 {
	if v == nil {
		return maxPoints / 2
	}
	return screening.Scale(*v, low, high, maxPoints)
}
