package longterm

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// RegimeClassifier decides the holding regime for a long-term position
// from two inputs: whether the business still earns above its cost of
// capital, and whether the long trend is intact. The 40-week average
// (200 daily bars) is the trend line.
type RegimeClassifier struct {
	logger *logger.Logger
}

// NewRegimeClassifier creates the classifier.
func NewRegimeClassifier(log *logger.Logger) *RegimeClassifier {
	return &RegimeClassifier{logger: log}
}

// Classify maps the inputs onto the three regimes:
//
//	growth_eligible: value creation intact and price above the long
//	                 average; adding on weakness is allowed.
//	hold_only:       one leg weakened; keep but do not add.
//	exit_signal:     both legs broken; the thesis is gone.
//
// Missing ROIC or WACC counts as intact value creation; a data gap
// must not force an exit on its own.
func (c *RegimeClassifier) Classify(symbol string, f contracts.Fundamentals, series contracts.PriceSeries) contracts.Regime {
	createsValue := true
	if f.ROIC != nil && f.WACC != nil {
		createsValue = *f.ROIC > *f.WACC
	}

	trendIntact := false
	closes := series.Closes()
	if ma, ok := screening.SMA(closes, 200); ok {
		if last, exists := series.Last(); exists {
			trendIntact = last.Close > ma
		}
	}

	var regime contracts.Regime
	switch {
	case createsValue && trendIntact:
		regime = contracts.RegimeGrowthEligible
	case !createsValue && !trendIntact:
		regime = contracts.RegimeExitSignal
	default:
		regime = contracts.RegimeHoldOnly
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":        symbol,
		"creates_value": createsValue,
		"trend_intact":  trendIntact,
		"regime":        regime,
	}).Debug("Classified holding regime")
	return regime
}
