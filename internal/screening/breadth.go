package screening

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// MarketGate decides whether new entries are allowed at all. Buying
// breakouts in a hostile tape fails regardless of how individual setups
// look, so the scan checks the benchmark and breadth before ranking.
type MarketGate struct {
	classifier *TrendClassifier
	logger     *logger.Logger
}

// GateResult explains the gate's decision.
type GateResult struct {
	Open           bool    `json:"open"`
	BenchmarkPhase contracts.Phase `json:"benchmark_phase"`
	BreadthPct     float64 `json:"breadth_pct"`
	Reason         string  `json:"reason,omitempty"`
}

// NewMarketGate uses the same classifier as individual symbols.
func NewMarketGate(classifier *TrendClassifier, log *logger.Logger) *MarketGate {
	return &MarketGate{classifier: classifier, logger: log}
}

// Check gates on two conditions: the benchmark must not be in a
// downtrend, and at least 40% of classified symbols must be in an
// uptrend or base. phases holds the per-symbol results of the scan.
func (g *MarketGate) Check(benchmark contracts.PriceSeries, phases []contracts.PhaseResult) (GateResult, error) {
	benchPhase, err := g.classifier.Classify("benchmark", benchmark)
	if err != nil {
		return GateResult{}, err
	}

	result := GateResult{
		BenchmarkPhase: benchPhase.Phase,
		BreadthPct:     breadthPct(phases),
	}

	switch {
	case benchPhase.Phase == contracts.PhaseDowntrend:
		result.Reason = "benchmark in downtrend"
	case len(phases) > 0 && result.BreadthPct < 40:
		result.Reason = "breadth below 40%"
	default:
		result.Open = true
	}

	g.logger.WithFields(map[string]interface{}{
		"open":            result.Open,
		"benchmark_phase": result.BenchmarkPhase,
		"breadth_pct":     result.BreadthPct,
	}).Info("Market gate checked")
	return result, nil
}

// breadthPct is the share of symbols in an uptrend or base.
func breadthPct(phases []contracts.PhaseResult) float64 {
	if len(phases) == 0 {
		return 0
	}
	var constructive int
	for _, p := range phases {
		if p.Phase == contracts.PhaseUptrend || p.Phase == contracts.PhaseBase {
			constructive++
		}
	}
	return float64(constructive) / float64(len(phases)) * 100
}
