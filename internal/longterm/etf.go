package longterm

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Themes the fund sleeve invests behind, with a tailwind grade 0..1
// reflecting how durable the secular driver looks.
var ThemeTailwinds = map[string]float64{
	"ai_cloud":              1.0,
	"defense":               0.8,
	"energy_transition":     0.7,
	"healthcare_innovation": 0.8,
	"cybersecurity":         0.9,
}

// ETFInput bundles one thematic fund candidate.
type ETFInput struct {
	Info   contracts.ETFInfo
	Series contracts.PriceSeries
}

// ETFScorer grades thematic funds: relative strength carries the most
// weight because a theme that is not working shows up there first,
// then theme purity, cost, and the secular tailwind.
type ETFScorer struct {
	cfg    strategyconfig.ETF
	rs     *screening.RelativeStrengthScorer
	logger *logger.Logger
}

// NewETFScorer wires the scorer.
func NewETFScorer(cfg strategyconfig.ETF, rs *screening.RelativeStrengthScorer, log *logger.Logger) *ETFScorer {
	return &ETFScorer{cfg: cfg, rs: rs, logger: log}
}

// Score produces the fund composite on 0..100.
func (s *ETFScorer) Score(in ETFInput) contracts.CompositeScore {
	score := contracts.CompositeScore{Symbol: in.Info.Symbol}
	if last, ok := in.Series.Last(); ok {
		score.AsOf = last.Date
	}

	// Purity: at least 60% of holdings in theme to start earning.
	purityPts := screening.Scale(in.Info.ThemePurity, 0.6, 0.95, s.cfg.PurityMax)
	score.AddFactor("theme_purity", purityPts, s.cfg.PurityMax)

	// Relative strength against the benchmark.
	rsPts := s.cfg.RSMax / 2
	if p, err := s.rs.Score(in.Series, s.cfg.RSMax); err == nil {
		rsPts = p
	}
	score.AddFactor("relative_strength", rsPts, s.cfg.RSMax)

	// Cost: 75bps down to 10bps spans the band.
	costPts := screening.Scale(in.Info.ExpenseRatio, 0.0075, 0.0010, s.cfg.CostMax)
	score.AddFactor("cost", costPts, s.cfg.CostMax)

	// Tailwind: unknown themes earn nothing.
	tailwindPts := screening.Scale(ThemeTailwinds[in.Info.Theme], 0, 1, s.cfg.TailwindMax)
	score.AddFactor("tailwind", tailwindPts, s.cfg.TailwindMax)

	s.logger.WithFields(map[string]interface{}{
		"symbol": in.Info.Symbol,
		"theme":  in.Info.Theme,
		"score":  score.Total,
	}).Debug("Calculated ETF score")
	return score
}

// Qualified reports whether the score clears the fund threshold.
func (s *ETFScorer) Qualified(score contracts.CompositeScore) bool {
	return score.Total >= s.cfg.Threshold
}
