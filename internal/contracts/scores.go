package contracts

import "time"

// Phase is the trend phase of a price series.
type Phase string

const (
	PhaseBase         Phase = "base"
	PhaseUptrend      Phase = "uptrend"
	PhaseDistribution Phase = "distribution"
	PhaseDowntrend    Phase = "downtrend"
)

// PhaseResult is the output of the trend classifier. Confidence is a
// graded 50..100 score; the boundary cases (flat slopes, price pinned
// between the averages) land near 50 instead of flipping phase.
type PhaseResult struct {
	Symbol     string  `json:"symbol"`
	Phase      Phase   `json:"phase"`
	Confidence float64 `json:"confidence"`

	Close      float64 `json:"close"`
	SMA50      float64 `json:"sma_50"`
	SMA200     float64 `json:"sma_200"`
	Slope50    float64 `json:"slope_50"`  // percent per day over the window
	Slope200   float64 `json:"slope_200"` // percent per day over the window

	AsOf time.Time `json:"as_of"`
}

// FactorScore is one component of a composite score, with the points
// awarded and the component's maximum so reports can show the breakdown.
type FactorScore struct {
	Component string  `json:"component"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"max_points"`
}

// CompositeScore is a weighted sum of factor scores for one symbol.
type CompositeScore struct {
	Symbol  string        `json:"symbol"`
	Total   float64       `json:"total"`
	Max     float64       `json:"max"`
	Factors []FactorScore `json:"factors"`
	AsOf    time.Time     `json:"as_of"`
}

// AddFactor appends a component and folds it into the totals.
func (c *CompositeScore) AddFactor(component string, points, max float64) {
	c.Factors = append(c.Factors, FactorScore{Component: component, Points: points, MaxPoints: max})
	c.Total += points
	c.Max += max
}

// Factor returns the named component. ok is false when absent.
func (c *CompositeScore) Factor(component string) (FactorScore, bool) {
	for _, f := range c.Factors {
		if f.Component == component {
			return f, true
		}
	}
	return FactorScore{}, false
}

// SellSeverity bands a sell score into an action urgency.
type SellSeverity string

const (
	SeverityNone     SellSeverity = "none"
	SeverityMedium   SellSeverity = "medium"
	SeverityHigh     SellSeverity = "high"
	SeverityCritical SellSeverity = "critical"
)

// SeverityForScore maps a sell score to its severity band.
func SeverityForScore(score float64) SellSeverity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 70:
		return SeverityHigh
	case score >= 60:
		return SeverityMedium
	default:
		return SeverityNone
	}
}

// Regime is the holding regime for a long-term position.
type Regime string

const (
	RegimeGrowthEligible Regime = "growth_eligible"
	RegimeHoldOnly       Regime = "hold_only"
	RegimeExitSignal     Regime = "exit_signal"
)
