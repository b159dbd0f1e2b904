package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

func newTestConstructor(mutate func(*strategyconfig.Portfolio)) *Constructor {
	cfg := strategyconfig.Default().Portfolio
	if mutate != nil {
		mutate(&cfg)
	}
	return NewConstructor(cfg, logger.NewNop())
}

func equity(symbol string, score float64, sector string) contracts.Candidate {
	return contracts.Candidate{Symbol: symbol, Kind: contracts.KindEquity, Score: score, Sector: sector}
}

func fund(symbol string, score float64, theme string) contracts.Candidate {
	return contracts.Candidate{Symbol: symbol, Kind: contracts.KindFund, Score: score, Theme: theme}
}

func asOf() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func TestBuildSumsToHundred(t *testing.T) {
	c := newTestConstructor(nil)

	candidates := []contracts.Candidate{
		equity("AAPL", 95, "tech"), equity("MSFT", 90, "tech"),
		equity("LLY", 85, "health"), equity("V", 80, "financials"),
		equity("COST", 78, "staples"), equity("NVDA", 99, "tech"),
		equity("UNH", 70, "health"), equity("HD", 68, "discretionary"),
		equity("LOW", 65, "discretionary"),
		fund("SMH", 88, "ai_cloud"), fund("ITA", 75, "defense"),
		fund("ICLN", 62, "energy_transition"), fund("IBB", 61, "healthcare_innovation"),
		fund("HACK", 60, "cybersecurity"),
	}

	p, err := c.Build(candidates, asOf())
	require.NoError(t, err)

	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1)
	assert.False(t, p.BestEffort)
	assert.Len(t, p.Allocations, 12, "8 core + 4 satellite")

	// Caps hold for every position.
	for _, a := range p.Allocations {
		assert.LessOrEqual(t, a.WeightPct, 10.0+1e-6, a.Symbol)
		assert.Positive(t, a.WeightPct, a.Symbol)
	}
}

func TestBuildPositionCapRedistributes(t *testing.T) {
	// One dominant score that would take ~40% uncapped.
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 5
		p.SatelliteCount = 0
		p.CorePct = 100
		p.SatellitePct = 0
		p.PositionMaxPct = 25
	})

	candidates := []contracts.Candidate{
		equity("WHALE", 400, "tech"),
		equity("B", 150, "health"), equity("C", 150, "financials"),
		equity("D", 150, "staples"), equity("E", 150, "energy"),
	}

	p, err := c.Build(candidates, asOf())
	require.NoError(t, err)

	byol := make(map[string]float64)
	for _, a := range p.Allocations {
		byol[a.Symbol] = a.WeightPct
	}

	assert.InDelta(t, 25.0, byol["WHALE"], 1e-6, "dominant position clips at the cap")
	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1)
	for sym, w := range byol {
		assert.LessOrEqual(t, w, 25.0+1e-6, sym)
	}
}

func TestBuildSectorCap(t *testing.T) {
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 6
		p.SatelliteCount = 0
		p.CorePct = 100
		p.SatellitePct = 0
		p.PositionMaxPct = 30
		p.SectorMaxPct = 35
		p.ThemeMaxPct = 100
	})

	candidates := []contracts.Candidate{
		equity("T1", 100, "tech"), equity("T2", 100, "tech"), equity("T3", 100, "tech"),
		equity("H1", 50, "health"), equity("F1", 50, "financials"), equity("S1", 50, "staples"),
	}

	p, err := c.Build(candidates, asOf())
	require.NoError(t, err)

	var techTotal float64
	for _, a := range p.Allocations {
		if a.Sector == "tech" {
			techTotal += a.WeightPct
		}
	}
	assert.LessOrEqual(t, techTotal, 35.0+0.1)
	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1)
}

func TestBuildBestEffortWhenInfeasible(t *testing.T) {
	// Three candidates at a 10% cap cannot reach 100%.
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 8
		p.SatelliteCount = 0
		p.CorePct = 100
		p.SatellitePct = 0
	})

	candidates := []contracts.Candidate{
		equity("A", 90, "tech"), equity("B", 80, "health"), equity("C", 70, "energy"),
	}

	p, err := c.Build(candidates, asOf())
	assert.ErrorIs(t, err, ErrConstraintUnsatisfiable)
	require.NotNil(t, p)
	assert.True(t, p.BestEffort)
	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1, "best effort still sums to 100")
}

func TestBuildFlagsCapBreachFromDominantScore(t *testing.T) {
	// One score so dominant that even after clipping it, the excess
	// exceeds the headroom of the rest: every position ends at the cap
	// and normalizing must not hide the breach.
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 8
		p.SatelliteCount = 0
		p.CorePct = 100
		p.SatellitePct = 0
		p.PositionMaxPct = 10
	})

	candidates := []contracts.Candidate{
		equity("WHALE", 400, "tech"),
		equity("B", 50, "health"), equity("C", 50, "financials"),
		equity("D", 50, "staples"), equity("E", 50, "energy"),
		equity("F", 50, "industrials"), equity("G", 50, "utilities"),
		equity("H", 50, "materials"),
	}

	p, err := c.Build(candidates, asOf())
	assert.ErrorIs(t, err, ErrConstraintUnsatisfiable)
	require.NotNil(t, p)
	assert.True(t, p.BestEffort)
	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1)
}

func TestBuildEmptySatelliteFoldsIntoCore(t *testing.T) {
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 10
		p.SatelliteCount = 4
	})

	candidates := []contracts.Candidate{
		equity("A", 90, "tech"), equity("B", 85, "health"),
		equity("C", 80, "financials"), equity("D", 75, "staples"),
		equity("E", 70, "energy"), equity("F", 65, "industrials"),
		equity("G", 60, "utilities"), equity("H", 55, "materials"),
		equity("I", 50, "realestate"), equity("J", 45, "discretionary"),
	}

	p, err := c.Build(candidates, asOf())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, p.TotalWeight(), 0.1)
	for _, a := range p.Allocations {
		assert.Equal(t, contracts.TierCore, a.Tier)
	}
}

func TestBuildNoCandidates(t *testing.T) {
	c := newTestConstructor(nil)
	p, err := c.Build(nil, asOf())
	require.NoError(t, err)
	assert.Empty(t, p.Allocations)
}

func TestBuildDeterministicOnTies(t *testing.T) {
	c := newTestConstructor(func(p *strategyconfig.Portfolio) {
		p.CoreCount = 2
		p.SatelliteCount = 0
		p.CorePct = 100
		p.SatellitePct = 0
		p.PositionMaxPct = 60
		p.SectorMaxPct = 60
	})

	candidates := []contracts.Candidate{
		equity("ZZZ", 80, "a"), equity("AAA", 80, "b"), equity("MMM", 80, "c"),
	}

	first, err := c.Build(candidates, asOf())
	require.NoError(t, err)
	second, err := c.Build(candidates, asOf())
	require.NoError(t, err)
	assert.Equal(t, first.Allocations, second.Allocations)
	// Ties break on symbol: AAA and MMM selected.
	assert.Equal(t, "AAA", first.Allocations[0].Symbol)
	assert.Equal(t, "MMM", first.Allocations[1].Symbol)
}

func TestRebalancePlan(t *testing.T) {
	cfg := strategyconfig.Default().Portfolio
	r := NewRebalancer(cfg, logger.NewNop())

	target := &contracts.Portfolio{
		Allocations: []contracts.Allocation{
			{Symbol: "AAPL", WeightPct: 10},
			{Symbol: "MSFT", WeightPct: 10},
			{Symbol: "NVDA", WeightPct: 8},
		},
	}
	current := map[string]float64{
		"AAPL": 9.5,  // within threshold: hold
		"MSFT": 4,    // 6 under: buy
		"TSLA": 7,    // not in target: sell
	}

	items := r.Plan(target, current)
	require.Len(t, items, 4)

	byol := make(map[string]contracts.RebalanceAction)
	for _, it := range items {
		byol[it.Symbol] = it.Action
	}
	assert.Equal(t, contracts.ActionHold, byol["AAPL"])
	assert.Equal(t, contracts.ActionBuy, byol["MSFT"])
	assert.Equal(t, contracts.ActionBuy, byol["NVDA"])
	assert.Equal(t, contracts.ActionSell, byol["TSLA"])

	// Sorted by absolute drift descending.
	assert.Equal(t, "NVDA", items[0].Symbol)
	assert.InDelta(t, 8.0, items[0].DriftPct, 1e-9)
}
