package screening

import (
	"errors"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// SignalInput bundles everything the signal calculators read for one
// symbol.
type SignalInput struct {
	Symbol       string
	Series       contracts.PriceSeries
	Fundamentals *contracts.Fundamentals // nil when the fetch failed
}

// BuySignal is a scored buy candidate.
type BuySignal struct {
	Score contracts.CompositeScore
	Phase contracts.PhaseResult
	// Qualified is true when the capped score clears the threshold.
	Qualified bool
}

// SellSignal is a scored exit warning for a held symbol.
type SellSignal struct {
	Score    contracts.CompositeScore
	Severity contracts.SellSeverity
}

// SignalCalculator builds buy and sell composites from trend, volume,
// relative strength, and fundamentals. Every component is a clamped
// linear band, so the totals move continuously with the inputs.
type SignalCalculator struct {
	cfg        *strategyconfig.Config
	classifier *TrendClassifier
	rs         *RelativeStrengthScorer
	logger     *logger.Logger
}

// NewSignalCalculator wires the calculator. rs carries the benchmark
// series for the scan.
func NewSignalCalculator(cfg *strategyconfig.Config, classifier *TrendClassifier, rs *RelativeStrengthScorer, log *logger.Logger) *SignalCalculator {
	return &SignalCalculator{cfg: cfg, classifier: classifier, rs: rs, logger: log}
}

// Buy scores a candidate for entry. The raw sum can exceed 100; it is
// capped at cfg.Buy.Cap so an exceptional setup cannot dominate the
// ranking without bound. Components whose data is missing contribute
// their neutral (half the band) instead of disqualifying the symbol.
func (c *SignalCalculator) Buy(in SignalInput) (BuySignal, error) {
	phase, err := c.classifier.Classify(in.Symbol, in.Series)
	if err != nil {
		return BuySignal{}, err
	}

	buy := c.cfg.Buy
	score := contracts.CompositeScore{Symbol: in.Symbol, AsOf: phase.AsOf}

	// Trend: only an uptrend earns the band; confidence grades it.
	var trendPts float64
	if phase.Phase == contracts.PhaseUptrend {
		trendPts = Scale(phase.Confidence, 50, 100, buy.TrendMax)
	} else if phase.Phase == contracts.PhaseBase {
		// A constructive base earns partial credit.
		trendPts = Scale(phase.Confidence, 50, 100, buy.TrendMax*0.4)
	}
	score.AddFactor("trend", trendPts, buy.TrendMax)

	// Fundamentals: 0..100 quality grade scaled into its band.
	fundPts := buy.FundamentalsMax / 2
	if in.Fundamentals != nil {
		fundPts = Scale(FundamentalsScore(*in.Fundamentals), 0, 100, buy.FundamentalsMax)
	}
	score.AddFactor("fundamentals", fundPts, buy.FundamentalsMax)

	// Volume: expansion up to 2x the trailing average.
	volPts := buy.VolumeMax / 2
	if ratio, ok := VolumeRatio(in.Series, 20); ok {
		volPts = Scale(ratio, 0.8, 2.0, buy.VolumeMax)
	}
	score.AddFactor("volume", volPts, buy.VolumeMax)

	// Relative strength against the benchmark.
	rsPts, err := c.rs.Score(in.Series, buy.RSMax)
	if err != nil {
		if !errors.Is(err, ErrInsufficientData) {
			return BuySignal{}, err
		}
		rsPts = buy.RSMax / 2
	}
	score.AddFactor("relative_strength", rsPts, buy.RSMax)

	// Risk/reward: distance to the short average is the risk proxy.
	// Tight to the average (low downside to support) scores best.
	rrPts := Scale(DistancePct(phase.Close, phase.SMA50), 15, 2, buy.RiskRewardMax)
	score.AddFactor("risk_reward", rrPts, buy.RiskRewardMax)

	// Entry quality: proximity to the recent high without being
	// extended. Within 5% of the 52-week high is the sweet spot.
	entryPts := buy.EntryMax / 2
	if high, ok := HighestClose(in.Series, min(len(in.Series), 252)); ok && high > 0 {
		offHigh := DistancePct(phase.Close, high) // <= 0
		entryPts = Scale(offHigh, -25, -5, buy.EntryMax)
	}
	score.AddFactor("entry", entryPts, buy.EntryMax)

	if score.Total > buy.Cap {
		score.Total = buy.Cap
	}

	sig := BuySignal{
		Score:     score,
		Phase:     phase,
		Qualified: score.Total >= buy.Threshold,
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":    in.Symbol,
		"score":     score.Total,
		"phase":     phase.Phase,
		"qualified": sig.Qualified,
	}).Debug("Calculated buy signal")
	return sig, nil
}

// Sell scores the urgency of exiting a held symbol. High scores mean
// the uptrend is breaking down with confirmation.
func (c *SignalCalculator) Sell(in SignalInput) (SellSignal, error) {
	phase, err := c.classifier.Classify(in.Symbol, in.Series)
	if err != nil {
		return SellSignal{}, err
	}

	sell := c.cfg.Sell
	score := contracts.CompositeScore{Symbol: in.Symbol, AsOf: phase.AsOf}

	// Breakdown: distribution and downtrend phases earn the band,
	// graded by confidence and how far price has lost the averages.
	var breakPts float64
	switch phase.Phase {
	case contracts.PhaseDowntrend:
		breakPts = Scale(phase.Confidence, 50, 100, sell.BreakdownMax)
	case contracts.PhaseDistribution:
		breakPts = Scale(phase.Confidence, 50, 100, sell.BreakdownMax*0.7)
	}
	score.AddFactor("breakdown", breakPts, sell.BreakdownMax)

	// Volume confirmation: selling on expanding volume.
	volPts := 0.0
	if ratio, ok := VolumeRatio(in.Series, 20); ok && breakPts > 0 {
		volPts = Scale(ratio, 1.0, 2.5, sell.VolumeMax)
	}
	score.AddFactor("volume", volPts, sell.VolumeMax)

	// Relative weakness: underperforming the benchmark confirms.
	rsPts := 0.0
	if slope, err := c.rs.RatioSlope(in.Series); err == nil {
		rsPts = Scale(slope, 0.05, -0.2, sell.RSMax)
	}
	score.AddFactor("relative_weakness", rsPts, sell.RSMax)

	sig := SellSignal{
		Score:    score,
		Severity: contracts.SeverityForScore(score.Total),
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   in.Symbol,
		"score":    score.Total,
		"severity": sig.Severity,
	}).Debug("Calculated sell signal")
	return sig, nil
}
