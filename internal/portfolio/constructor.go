package portfolio

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// ErrConstraintUnsatisfiable is returned alongside a best-effort
// portfolio when the caps cannot all hold at once. The caller reports
// it and uses the allocation anyway.
var ErrConstraintUnsatisfiable = errors.New("allocation constraints unsatisfiable")

// maxRedistributeIterations bounds the clip-and-redistribute loop. The
// loop contracts geometrically, so the bound only matters for
// genuinely infeasible cap sets.
const maxRedistributeIterations = 100

// capTolerancePct is the residual cap violation treated as satisfied.
const capTolerancePct = 1e-6

// Constructor turns ranked candidates into a weighted portfolio: the
// top equities form the core book, the top funds the satellite sleeve,
// weights proportional to score within each sleeve, then position,
// sector, and theme caps enforced by iterative redistribution.
type Constructor struct {
	cfg    strategyconfig.Portfolio
	logger *logger.Logger
}

// NewConstructor creates a constructor with the strategy's constraints.
func NewConstructor(cfg strategyconfig.Portfolio, log *logger.Logger) *Constructor {
	return &Constructor{cfg: cfg, logger: log}
}

// Build allocates 100% across the selected candidates. The returned
// portfolio always sums to 100 within 0.1 percentage points; when the
// caps cannot be fully honored the portfolio is marked best-effort and
// ErrConstraintUnsatisfiable accompanies it.
func (c *Constructor) Build(candidates []contracts.Candidate, asOf time.Time) (*contracts.Portfolio, error) {
	equities, funds := split(candidates)

	core := topN(equities, c.cfg.CoreCount)
	satellite := topN(funds, c.cfg.SatelliteCount)

	if len(core) == 0 {
		return &contracts.Portfolio{AsOf: asOf}, nil
	}

	// An empty satellite folds its budget into the core.
	corePct := c.cfg.CorePct
	if len(satellite) == 0 {
		corePct = 100
	}

	allocations := c.allocateSleeve(core, contracts.TierCore, corePct)
	if len(satellite) > 0 {
		allocations = append(allocations, c.allocateSleeve(satellite, contracts.TierSatellite, 100-corePct)...)
	}

	satisfied := c.applyCaps(allocations)
	normalize(allocations)

	p := &contracts.Portfolio{
		AsOf:        asOf,
		Allocations: allocations,
		BestEffort:  !satisfied,
	}
	if !satisfied {
		p.Note = "caps could not be fully satisfied; closest feasible allocation"
		c.logger.WithField("positions", len(allocations)).Warn("Allocation constraints unsatisfiable, returning best effort")
		return p, ErrConstraintUnsatisfiable
	}

	c.logger.WithFields(map[string]interface{}{
		"positions": len(allocations),
		"core":      len(core),
		"satellite": len(satellite),
	}).Info("Portfolio constructed")
	return p, nil
}

// allocateSleeve distributes sleevePct across members proportional to
// score. A zero score sum degrades to equal weight.
func (c *Constructor) allocateSleeve(members []contracts.Candidate, tier contracts.Tier, sleevePct float64) []contracts.Allocation {
	var scoreSum float64
	for _, m := range members {
		if m.Score > 0 {
			scoreSum += m.Score
		}
	}

	out := make([]contracts.Allocation, 0, len(members))
	for _, m := range members {
		var w float64
		if scoreSum > 0 {
			s := m.Score
			if s < 0 {
				s = 0
			}
			w = s / scoreSum * sleevePct
		} else {
			w = sleevePct / float64(len(members))
		}
		out = append(out, contracts.Allocation{
			Symbol:    m.Symbol,
			Kind:      m.Kind,
			Tier:      tier,
			WeightPct: w,
			Score:     m.Score,
			Sector:    m.Sector,
			Theme:     m.Theme,
		})
	}
	return out
}

// applyCaps clips positions to the position cap and groups to the
// sector and theme caps, redistributing the excess to uncapped
// positions pro rata. Returns false when the iteration limit is hit
// with caps still violated.
func (c *Constructor) applyCaps(allocs []contracts.Allocation) bool {
	for iter := 0; iter < maxRedistributeIterations; iter++ {
		excess := c.clipPositions(allocs)
		excess += c.clipGroups(allocs, func(a contracts.Allocation) string { return a.Sector }, c.cfg.SectorMaxPct)
		excess += c.clipGroups(allocs, func(a contracts.Allocation) string { return a.Theme }, c.cfg.ThemeMaxPct)

		if excess < capTolerancePct {
			return true
		}
		if leftover := redistribute(allocs, excess, c.cfg.PositionMaxPct); leftover > capTolerancePct {
			// The caps leave no room for the remaining weight;
			// normalizing will push positions back over their caps.
			return false
		}
	}
	return false
}

// clipPositions caps each position, returning the total clipped off.
func (c *Constructor) clipPositions(allocs []contracts.Allocation) float64 {
	var excess float64
	for i := range allocs {
		if allocs[i].WeightPct > c.cfg.PositionMaxPct {
			excess += allocs[i].WeightPct - c.cfg.PositionMaxPct
			allocs[i].WeightPct = c.cfg.PositionMaxPct
		}
	}
	return excess
}

// clipGroups caps each non-empty group key, shaving members pro rata.
func (c *Constructor) clipGroups(allocs []contracts.Allocation, key func(contracts.Allocation) string, capPct float64) float64 {
	totals := make(map[string]float64)
	for _, a := range allocs {
		if k := key(a); k != "" {
			totals[k] += a.WeightPct
		}
	}

	var excess float64
	for k, total := range totals {
		if total <= capPct {
			continue
		}
		over := total - capPct
		excess += over
		// Shave each member proportionally to its share of the group.
		for i := range allocs {
			if key(allocs[i]) == k {
				allocs[i].WeightPct -= over * (allocs[i].WeightPct / total)
			}
		}
	}
	return excess
}

// redistribute spreads excess across positions with headroom under the
// position cap, proportional to available headroom. Returns the excess
// that could not be placed anywhere.
func redistribute(allocs []contracts.Allocation, excess, positionMax float64) float64 {
	var headroom float64
	for _, a := range allocs {
		if a.WeightPct < positionMax {
			headroom += positionMax - a.WeightPct
		}
	}
	if headroom < 1e-9 {
		return excess
	}

	grant := excess
	if grant > headroom {
		grant = headroom
	}
	for i := range allocs {
		room := positionMax - allocs[i].WeightPct
		if room > 0 {
			allocs[i].WeightPct += grant * (room / headroom)
		}
	}
	return excess - grant
}

// normalize scales weights so they sum to exactly 100, absorbing
// floating-point drift from the cap iterations.
func normalize(allocs []contracts.Allocation) {
	var sum float64
	for _, a := range allocs {
		sum += a.WeightPct
	}
	if sum == 0 || math.Abs(sum-100) < 1e-12 {
		return
	}
	for i := range allocs {
		allocs[i].WeightPct *= 100 / sum
	}
}

func split(candidates []contracts.Candidate) (equities, funds []contracts.Candidate) {
	for _, c := range candidates {
		if c.Kind == contracts.KindFund {
			funds = append(funds, c)
		} else {
			equities = append(equities, c)
		}
	}
	return equities, funds
}

// topN returns the n highest-scored candidates, stable on symbol for
// equal scores so reruns produce identical portfolios.
func topN(candidates []contracts.Candidate, n int) []contracts.Candidate {
	sorted := make([]contracts.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}
