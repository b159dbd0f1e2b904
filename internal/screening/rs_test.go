package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioSlopeOutperformer(t *testing.T) {
	benchmark := makeSeries(400, 0.05, 300, 1_000_000)
	scorer := NewRelativeStrengthScorer(benchmark, 60)

	strong := makeSeries(100, 0.5, 300, 1_000_000)
	slope, err := scorer.RatioSlope(strong)
	require.NoError(t, err)
	assert.Positive(t, slope)

	weak := makeSeries(100, -0.3, 300, 1_000_000)
	slope, err = scorer.RatioSlope(weak)
	require.NoError(t, err)
	assert.Negative(t, slope)
}

func TestRSScoreBounds(t *testing.T) {
	benchmark := makeSeries(400, 0.05, 300, 1_000_000)
	scorer := NewRelativeStrengthScorer(benchmark, 60)

	strong, err := scorer.Score(makeSeries(100, 1.5, 300, 1_000_000), 10)
	require.NoError(t, err)
	assert.InDelta(t, 10, strong, 1e-9, "extreme outperformance clamps at the band")

	weak, err := scorer.Score(makeSeries(100, -1.5, 300, 1_000_000), 10)
	require.NoError(t, err)
	assert.InDelta(t, 0, weak, 1e-9)

	// Matching the benchmark exactly lands at half credit.
	par, err := scorer.Score(makeSeries(100, 0.05, 300, 1_000_000), 10)
	require.NoError(t, err)
	assert.InDelta(t, 5, par, 0.5)
}

func TestRatioSlopeAlignsOnCommonDates(t *testing.T) {
	benchmark := makeSeries(400, 0.05, 300, 1_000_000)
	series := makeSeries(100, 0.5, 300, 1_000_000)

	// Drop every seventh bar from the symbol; alignment must still
	// produce a usable ratio over the intersection.
	var gappy = series[:0:0]
	for i, p := range series {
		if i%7 == 0 {
			continue
		}
		gappy = append(gappy, p)
	}

	scorer := NewRelativeStrengthScorer(benchmark, 60)
	slope, err := scorer.RatioSlope(gappy)
	require.NoError(t, err)
	assert.Positive(t, slope)
}

func TestRatioSlopeInsufficientOverlap(t *testing.T) {
	benchmark := makeSeries(400, 0.05, 30, 1_000_000)
	scorer := NewRelativeStrengthScorer(benchmark, 60)

	_, err := scorer.RatioSlope(makeSeries(100, 0.5, 30, 1_000_000))
	assert.ErrorIs(t, err, ErrInsufficientData)
}
