package portfolio

import (
	"sort"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Rebalancer compares a target portfolio against current weights and
// emits actions only where drift exceeds the threshold. Small drift is
// left alone; churn costs more than precision is worth in a long-hold
// book.
type Rebalancer struct {
	cfg    strategyconfig.Portfolio
	logger *logger.Logger
}

// NewRebalancer creates a rebalancer.
func NewRebalancer(cfg strategyconfig.Portfolio, log *logger.Logger) *Rebalancer {
	return &Rebalancer{cfg: cfg, logger: log}
}

// Plan produces one item per symbol in either the target or the
// current holdings, sorted by absolute drift descending.
func (r *Rebalancer) Plan(target *contracts.Portfolio, currentPct map[string]float64) []contracts.RebalanceItem {
	targetPct := make(map[string]float64, len(target.Allocations))
	for _, a := range target.Allocations {
		targetPct[a.Symbol] = a.WeightPct
	}

	symbols := make(map[string]struct{}, len(targetPct)+len(currentPct))
	for s := range targetPct {
		symbols[s] = struct{}{}
	}
	for s := range currentPct {
		symbols[s] = struct{}{}
	}

	items := make([]contracts.RebalanceItem, 0, len(symbols))
	for s := range symbols {
		tgt := targetPct[s]
		cur := currentPct[s]
		drift := tgt - cur

		action := contracts.ActionHold
		if drift > r.cfg.DriftThresholdPct {
			action = contracts.ActionBuy
		} else if drift < -r.cfg.DriftThresholdPct {
			action = contracts.ActionSell
		}

		items = append(items, contracts.RebalanceItem{
			Symbol:     s,
			Action:     action,
			TargetPct:  tgt,
			CurrentPct: cur,
			DriftPct:   drift,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		di, dj := abs(items[i].DriftPct), abs(items[j].DriftPct)
		if di != dj {
			return di > dj
		}
		return items[i].Symbol < items[j].Symbol
	})

	var buys, sells int
	for _, it := range items {
		switch it.Action {
		case contracts.ActionBuy:
			buys++
		case contracts.ActionSell:
			sells++
		}
	}
	r.logger.WithFields(map[string]interface{}{
		"items": len(items),
		"buys":  buys,
		"sells": sells,
	}).Info("Rebalance plan built")
	return items
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
