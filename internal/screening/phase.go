package screening

import (
	"errors"
	"fmt"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// ErrInsufficientData is returned when a series is too short to
// classify. Callers decide whether that excludes the symbol or only the
// trend component.
var ErrInsufficientData = errors.New("insufficient price history")

// TrendClassifier assigns a trend phase from the posture of price
// against its moving averages and their slopes.
type TrendClassifier struct {
	cfg    strategyconfig.Trend
	logger *logger.Logger
}

// NewTrendClassifier creates a classifier with the strategy's windows.
func NewTrendClassifier(cfg strategyconfig.Trend, log *logger.Logger) *TrendClassifier {
	return &TrendClassifier{cfg: cfg, logger: log}
}

// Classify determines the phase for one symbol. Confidence is graded
// 50..100: 50 means the posture barely qualifies, 100 means every
// confirming input is strong. Boundary cases (flat slopes, price pinned
// between the averages) classify as Base with low confidence rather
// than flapping between phases.
func (c *TrendClassifier) Classify(symbol string, series contracts.PriceSeries) (contracts.PhaseResult, error) {
	if len(series) < c.cfg.MinBars {
		return contracts.PhaseResult{}, fmt.Errorf("%w: %s has %d bars, need %d", ErrInsufficientData, symbol, len(series), c.cfg.MinBars)
	}

	closes := series.Closes()
	last, _ := series.Last()

	smaShort, _ := SMA(closes, c.cfg.MAShort)
	smaLong, _ := SMA(closes, c.cfg.MALong)

	shortSeries := SMASeries(closes, c.cfg.MAShort)
	longSeries := SMASeries(closes, c.cfg.MALong)
	slopeShort, _ := SlopePctPerDay(shortSeries, c.cfg.SlopeWindow)
	slopeLong, _ := SlopePctPerDay(longSeries, c.cfg.SlopeWindow)

	result := contracts.PhaseResult{
		Symbol:   symbol,
		Close:    last.Close,
		SMA50:    smaShort,
		SMA200:   smaLong,
		Slope50:  slopeShort,
		Slope200: slopeLong,
		AsOf:     last.Date,
	}

	price := last.Close
	aboveShort := price > smaShort
	aboveLong := price > smaLong
	stacked := smaShort > smaLong

	switch {
	case aboveShort && stacked && slopeShort > 0:
		result.Phase = contracts.PhaseUptrend
		result.Confidence = uptrendConfidence(price, smaShort, slopeShort, slopeLong)
	case !aboveShort && !stacked && slopeShort < 0:
		result.Phase = contracts.PhaseDowntrend
		result.Confidence = downtrendConfidence(price, smaShort, slopeShort, slopeLong)
	case !aboveShort && stacked:
		// Price lost the short average while the averages are still
		// stacked bullishly: the look of a top forming.
		result.Phase = contracts.PhaseDistribution
		result.Confidence = distributionConfidence(price, smaShort, slopeShort)
	case aboveShort && stacked && slopeShort <= 0:
		result.Phase = contracts.PhaseDistribution
		result.Confidence = distributionConfidence(price, smaShort, slopeShort)
	default:
		result.Phase = contracts.PhaseBase
		result.Confidence = baseConfidence(slopeShort, aboveLong)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"phase":      result.Phase,
		"confidence": result.Confidence,
	}).Debug("Classified trend phase")
	return result, nil
}

// uptrendConfidence grades a confirmed uptrend. The posture itself
// (price above a rising short average stacked over the long one) is
// already strong evidence, so confidence starts at 70 and slope
// strength plus extension grade the rest up to 100.
func uptrendConfidence(price, smaShort, slopeShort, slopeLong float64) float64 {
	conf := 70.0
	conf += Scale(slopeShort, 0, 0.3, 15) // short slope up to 0.3%/day
	conf += Scale(slopeLong, 0, 0.1, 10)  // long average rising too
	conf += Scale(DistancePct(price, smaShort), 0, 5, 5)
	return clampConfidence(conf)
}

func downtrendConfidence(price, smaShort, slopeShort, slopeLong float64) float64 {
	conf := 50.0
	conf += Scale(slopeShort, 0, -0.3, 25)
	conf += Scale(slopeLong, 0, -0.1, 15)
	conf += Scale(DistancePct(price, smaShort), 0, -5, 10)
	return clampConfidence(conf)
}

func distributionConfidence(price, smaShort, slopeShort float64) float64 {
	conf := 50.0
	conf += Scale(slopeShort, 0.05, -0.2, 30) // rolling over
	conf += Scale(DistancePct(price, smaShort), 0, -8, 20)
	return clampConfidence(conf)
}

// baseConfidence is highest when the trend is genuinely flat. A base
// above the long average is the more constructive variant.
func baseConfidence(slopeShort float64, aboveLong bool) float64 {
	flatness := slopeShort
	if flatness < 0 {
		flatness = -flatness
	}
	conf := 50.0 + Scale(flatness, 0.15, 0, 35)
	if aboveLong {
		conf += 15
	}
	return clampConfidence(conf)
}

func clampConfidence(v float64) float64 {
	if v < 50 {
		return 50
	}
	if v > 100 {
		return 100
	}
	return v
}
