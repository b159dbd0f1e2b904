package contracts

import "time"

// PricePoint is one daily bar of a price series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a date-ascending sequence of daily bars.
type PriceSeries []PricePoint

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Volumes returns the volumes in series order.
func (s PriceSeries) Volumes() []int64 {
	out := make([]int64, len(s))
	for i, p := range s {
		out[i] = p.Volume
	}
	return out
}

// Last returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// Fundamentals holds the fundamental metrics used by the scoring
// formulas. Optional metrics are pointers: a nil field means the
// provider had no data, which scorers treat as an explicit neutral
// rather than a zero.
type Fundamentals struct {
	Symbol    string    `json:"symbol"`
	FetchedAt time.Time `json:"fetched_at"`

	// Valuation
	PE *float64 `json:"pe,omitempty"`
	PB *float64 `json:"pb,omitempty"`
	PS *float64 `json:"ps,omitempty"`

	// Growth (percent, year over year or CAGR)
	RevenueYoY    *float64 `json:"revenue_yoy,omitempty"`
	EPSYoY        *float64 `json:"eps_yoy,omitempty"`
	RevenueCAGR3Y *float64 `json:"revenue_cagr_3y,omitempty"`
	RevenueCAGR5Y *float64 `json:"revenue_cagr_5y,omitempty"`
	EPSCAGR3Y     *float64 `json:"eps_cagr_3y,omitempty"`

	// Capital efficiency (ratios, 0.15 == 15%)
	ROIC      *float64 `json:"roic,omitempty"`
	WACC      *float64 `json:"wacc,omitempty"`
	FCFMargin *float64 `json:"fcf_margin,omitempty"`
	RDToSales *float64 `json:"rd_to_sales,omitempty"`

	// Balance sheet
	DebtToEBITDA     *float64 `json:"debt_to_ebitda,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`

	// Demand signal
	InventoryQoQ *float64 `json:"inventory_qoq,omitempty"`
}

// ETFInfo describes a thematic fund for the ETF scoring formula. The
// yaml tags match the tracked-ETFs file.
type ETFInfo struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Name         string  `json:"name" yaml:"name"`
	Theme        string  `json:"theme" yaml:"theme"`
	ExpenseRatio float64 `json:"expense_ratio" yaml:"expense_ratio"` // annual, 0.0045 == 45 bps
	AUM          float64 `json:"aum" yaml:"aum"`                     // USD
	TopTenWeight float64 `json:"top_ten_weight" yaml:"top_ten_weight"`
	ThemePurity  float64 `json:"theme_purity" yaml:"theme_purity"` // share of holdings in theme, 0..1
}

// Instrument identifies a scanned symbol and its classification bucket.
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Sector string `json:"sector,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

// Kind separates stock-like and fund-like instruments.
type Kind string

const (
	KindEquity Kind = "equity"
	KindFund   Kind = "fund"
)
