package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

func newTestClassifier() *TrendClassifier {
	return NewTrendClassifier(strategyconfig.Default().Trend, logger.NewNop())
}

func TestClassifySteadyUptrend(t *testing.T) {
	series := makeSeries(50, 0.4, 300, 1_000_000)

	result, err := newTestClassifier().Classify("UP", series)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseUptrend, result.Phase)
	assert.GreaterOrEqual(t, result.Confidence, 70.0, "a clean persistent uptrend must classify with conviction")
	assert.LessOrEqual(t, result.Confidence, 100.0)
	assert.Greater(t, result.SMA50, result.SMA200)
	assert.Positive(t, result.Slope50)
}

func TestClassifyModestUptrendStillConvincing(t *testing.T) {
	// A slow but fully confirmed uptrend: the posture alone carries the
	// 70 floor even when the slopes are shallow.
	series := makeSeries(100, 0.05, 300, 1_000_000)

	result, err := newTestClassifier().Classify("SLOW", series)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseUptrend, result.Phase)
	assert.GreaterOrEqual(t, result.Confidence, 70.0)
}

func TestClassifySteadyDowntrend(t *testing.T) {
	series := makeSeries(200, -0.4, 300, 1_000_000)

	result, err := newTestClassifier().Classify("DOWN", series)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseDowntrend, result.Phase)
	assert.GreaterOrEqual(t, result.Confidence, 70.0)
	assert.Negative(t, result.Slope50)
}

func TestClassifyFlatIsBase(t *testing.T) {
	series := makeSeries(100, 0, 300, 1_000_000)

	result, err := newTestClassifier().Classify("FLAT", series)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseBase, result.Phase)
	assert.GreaterOrEqual(t, result.Confidence, 50.0)
}

func TestClassifyRolloverIsDistribution(t *testing.T) {
	// Long advance then a sharp break below the short average while the
	// averages are still stacked bullishly.
	up := makeSeries(50, 0.4, 280, 1_000_000)
	last := up[len(up)-1].Close
	down := makeSeries(last, -1.5, 20, 1_000_000)
	for i := range down {
		down[i].Date = up[len(up)-1].Date.AddDate(0, 0, i+1)
	}
	series := append(up, down...)

	result, err := newTestClassifier().Classify("ROLL", series)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseDistribution, result.Phase)
	assert.GreaterOrEqual(t, result.Confidence, 50.0)
}

func TestClassifyInsufficientData(t *testing.T) {
	series := makeSeries(100, 0.4, 150, 1_000_000)

	_, err := newTestClassifier().Classify("SHORT", series)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestConfidenceAlwaysInBand(t *testing.T) {
	// Sweep growth rates; confidence must stay in [50, 100] throughout.
	for _, pct := range []float64{-2, -0.8, -0.3, -0.05, 0, 0.05, 0.3, 0.8, 2} {
		series := makeSeries(100, pct, 300, 1_000_000)
		result, err := newTestClassifier().Classify("SWEEP", series)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Confidence, 50.0, "pct=%v", pct)
		assert.LessOrEqual(t, result.Confidence, 100.0, "pct=%v", pct)
	}
}
