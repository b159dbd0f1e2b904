package screening

import (
	"fmt"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// RelativeStrengthScorer measures a symbol's trend against a benchmark
// (typically SPY). The two series are aligned on their common dates
// before the ratio is built, so holidays and listing gaps never skew
// the comparison.
type RelativeStrengthScorer struct {
	benchmark contracts.PriceSeries
	window    int
}

// NewRelativeStrengthScorer takes the benchmark series and the slope
// window used on the ratio line.
func NewRelativeStrengthScorer(benchmark contracts.PriceSeries, window int) *RelativeStrengthScorer {
	return &RelativeStrengthScorer{benchmark: benchmark, window: window}
}

// RatioSlope returns the regression slope of the symbol/benchmark
// ratio in percent per day. Positive means the symbol is outperforming.
func (r *RelativeStrengthScorer) RatioSlope(series contracts.PriceSeries) (float64, error) {
	ratio := alignedRatio(series, r.benchmark)
	if len(ratio) < r.window {
		return 0, fmt.Errorf("%w: only %d common dates with benchmark, need %d", ErrInsufficientData, len(ratio), r.window)
	}
	slope, ok := SlopePctPerDay(ratio, r.window)
	if !ok {
		return 0, fmt.Errorf("%w: degenerate ratio series", ErrInsufficientData)
	}
	return slope, nil
}

// Score maps the ratio slope onto [0, maxPoints]. A flat ratio earns
// half credit; outperformance up to 0.2%/day earns the rest.
func (r *RelativeStrengthScorer) Score(series contracts.PriceSeries, maxPoints float64) (float64, error) {
	slope, err := r.RatioSlope(series)
	if err != nil {
		return 0, err
	}
	return Scale(slope, -0.2, 0.2, maxPoints), nil
}

// alignedRatio builds symbol/benchmark closes over the date
// intersection, in ascending date order.
func alignedRatio(series, benchmark contracts.PriceSeries) []float64 {
	benchByDate := make(map[time.Time]float64, len(benchmark))
	for _, p := range benchmark {
		benchByDate[dateOnly(p.Date)] = p.Close
	}

	var ratio []float64
	for _, p := range series {
		b, ok := benchByDate[dateOnly(p.Date)]
		if !ok || b == 0 {
			continue
		}
		ratio = append(ratio, p.Close/b)
	}
	return ratio
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
