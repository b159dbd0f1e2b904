package contracts

import "time"

// Candidate is a scored symbol eligible for allocation.
type Candidate struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Kind   Kind    `json:"kind"`
	Sector string  `json:"sector,omitempty"`
	Theme  string  `json:"theme,omitempty"`
	Score  float64 `json:"score"`
}

// Tier splits an allocation between the core book and the satellite
// sleeve.
type Tier string

const (
	TierCore      Tier = "core"
	TierSatellite Tier = "satellite"
)

// Allocation is one line of a constructed portfolio. WeightPct is in
// percent; a full portfolio sums to 100 within rounding tolerance.
type Allocation struct {
	Symbol    string  `json:"symbol"`
	Kind      Kind    `json:"kind"`
	Tier      Tier    `json:"tier"`
	WeightPct float64 `json:"weight_pct"`
	Score     float64 `json:"score"`
	Sector    string  `json:"sector,omitempty"`
	Theme     string  `json:"theme,omitempty"`
}

// Portfolio is the full output of the constructor.
type Portfolio struct {
	AsOf        time.Time    `json:"as_of"`
	Allocations []Allocation `json:"allocations"`
	// BestEffort is set when constraints could not all be satisfied and
	// the result is the closest feasible allocation.
	BestEffort bool   `json:"best_effort,omitempty"`
	Note       string `json:"note,omitempty"`
}

// TotalWeight returns the sum of allocation weights in percent.
func (p *Portfolio) TotalWeight() float64 {
	var sum float64
	for _, a := range p.Allocations {
		sum += a.WeightPct
	}
	return sum
}

// RebalanceAction is the decision for one symbol when comparing a
// target portfolio against current holdings.
type RebalanceAction string

const (
	ActionBuy  RebalanceAction = "BUY"
	ActionHold RebalanceAction = "HOLD"
	ActionSell RebalanceAction = "SELL"
)

// RebalanceItem pairs a symbol with its action and the weight drift
// that produced it.
type RebalanceItem struct {
	Symbol    string          `json:"symbol"`
	Action    RebalanceAction `json:"action"`
	TargetPct float64         `json:"target_pct"`
	CurrentPct float64        `json:"current_pct"`
	DriftPct  float64         `json:"drift_pct"`
}

// Position is a currently held lot for the position review.
type Position struct {
	Symbol     string    `json:"symbol"`
	Shares     float64   `json:"shares"`
	CostBasis  float64   `json:"cost_basis"`
	OpenedAt   time.Time `json:"opened_at,omitempty"`
}

// GainPct returns the unrealized gain in percent at the given price.
func (p Position) GainPct(price float64) float64 {
	if p.CostBasis <= 0 {
		return 0
	}
	return (price - p.CostBasis) / p.CostBasis * 100
}

// StopPolicy is the trailing-stop recommendation for a position.
type StopPolicy string

const (
	StopHold       StopPolicy = "hold"         // gain under 5%, no stop yet
	StopBreakeven  StopPolicy = "breakeven"    // 5..10%, stop at entry
	StopTrail      StopPolicy = "trail"        // 10..20%, stop at +5% or SMA50
	StopPartial    StopPolicy = "partial_trim" // 20..30%, trim and trail
	StopTight      StopPolicy = "tight_trail"  // 30%+, tight trail
)

// PositionReview is the output of reviewing one position.
type PositionReview struct {
	Symbol    string     `json:"symbol"`
	GainPct   float64    `json:"gain_pct"`
	Policy    StopPolicy `json:"policy"`
	StopPrice float64    `json:"stop_price"`
	Note      string     `json:"note,omitempty"`
}
