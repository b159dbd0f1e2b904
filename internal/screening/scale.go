package screening

// Scale maps value onto [0, maxPoints] linearly between low and high,
// clamped at both ends. When low > high the mapping inverts: smaller
// values earn more points. Every score component goes through this one
// function so scores move continuously with their inputs instead of
// jumping at thresholds.
func Scale(value, low, high, maxPoints float64) float64 {
	if low == high {
		if value >= low {
			return maxPoints
		}
		return 0
	}

	frac := (value - low) / (high - low)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac * maxPoints
}
