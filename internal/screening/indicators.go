package screening

import (
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// SMA returns the simple moving average of the last period values.
// ok is false when there are not enough values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// SMASeries returns the rolling SMA over the whole input. Entry i holds
// the average of values[i-period+1 .. i]; the first period-1 entries
// are dropped, so the result is len(values)-period+1 long.
func SMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// SlopePctPerDay fits a least-squares line through the last window
// values and returns the slope as a percentage of the window mean per
// day. Normalizing by the mean makes slopes comparable across price
// levels. ok is false when the window does not fit or the mean is zero.
func SlopePctPerDay(values []float64, window int) (float64, bool) {
	if window < 2 || len(values) < window {
		return 0, false
	}
	tail := values[len(values)-window:]

	// x = 0..window-1
	n := float64(window)
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range tail {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	slope := (n*sumXY - sumX*sumY) / denom

	mean := sumY / n
	if mean == 0 {
		return 0, false
	}
	return slope / mean * 100, true
}

// AvgVolume returns the mean volume of the last period bars.
func AvgVolume(series contracts.PriceSeries, period int) (float64, bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}
	var sum float64
	for _, p := range series[len(series)-period:] {
		sum += float64(p.Volume)
	}
	return sum / float64(period), true
}

// VolumeRatio compares the latest bar's volume to the trailing average
// ending one bar earlier. A ratio above 1 means expansion.
func VolumeRatio(series contracts.PriceSeries, period int) (float64, bool) {
	if len(series) < period+1 {
		return 0, false
	}
	avg, ok := AvgVolume(series[:len(series)-1], period)
	if !ok || avg == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	return float64(last.Volume) / avg, true
}

// DistancePct returns how far value sits from ref, in percent of ref.
func DistancePct(value, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return (value - ref) / ref * 100
}

// HighestClose returns the highest close over the last period bars.
func HighestClose(series contracts.PriceSeries, period int) (float64, bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}
	high := series[len(series)-period].Close
	for _, p := range series[len(series)-period:] {
		if p.Close > high {
			high = p.Close
		}
	}
	return high, true
}

// VolatilityContraction compares recent close-to-close volatility
// against the prior window. Values under 1 mean the range is
// tightening, a constructive setup sign.
func VolatilityContraction(series contracts.PriceSeries, recent, prior int) (float64, bool) {
	if len(series) < recent+prior+1 {
		return 0, false
	}
	closes := series.Closes()
	recentVol := meanAbsReturn(closes[len(closes)-recent-1:])
	priorVol := meanAbsReturn(closes[len(closes)-recent-prior-1 : len(closes)-recent])
	if priorVol == 0 {
		return 0, false
	}
	return recentVol / priorVol, true
}

func meanAbsReturn(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		r := (closes[i] - closes[i-1]) / closes[i-1]
		if r < 0 {
			r = -r
		}
		sum += r
	}
	return sum / float64(len(closes)-1)
}
