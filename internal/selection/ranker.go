package selection

import (
	"context"
	"errors"
	"sort"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/cache"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Ranker scores every universe member from cached scan data and
// returns the qualified candidates sorted by score. Symbols whose
// data never arrived are skipped with a reason, never scored on
// partial inputs they cannot support.
type Ranker struct {
	cache  *cache.Cache
	calc   *screening.SignalCalculator
	gate   *screening.MarketGate
	logger *logger.Logger
}

// Result carries the ranked candidates plus everything the report
// needs to explain the run.
type Result struct {
	Candidates []contracts.Candidate
	Phases     []contracts.PhaseResult
	Gate       screening.GateResult
	Skipped    map[string]string
}

// NewRanker wires the ranker.
func NewRanker(c *cache.Cache, calc *screening.SignalCalculator, gate *screening.MarketGate, log *logger.Logger) *Ranker {
	return &Ranker{cache: c, calc: calc, gate: gate, logger: log}
}

// Rank scores the instruments against the benchmark series. When the
// market gate is closed the candidate list is empty but phases and the
// gate result still come back for the report.
func (r *Ranker) Rank(ctx context.Context, instruments []contracts.Instrument, benchmark contracts.PriceSeries) (*Result, error) {
	result := &Result{Skipped: make(map[string]string)}

	for _, inst := range instruments {
		var series contracts.PriceSeries
		if err := r.cache.Get(ctx, inst.Symbol+":"+string(contracts.WorkPriceSeries), &series); err != nil {
			result.Skipped[inst.Symbol] = "no price series"
			continue
		}

		// Fundamentals are optional; the calculator pays neutral for a
		// missing set.
		var fundamentals *contracts.Fundamentals
		var f contracts.Fundamentals
		if err := r.cache.Get(ctx, inst.Symbol+":"+string(contracts.WorkFundamentals), &f); err == nil {
			fundamentals = &f
		}

		sig, err := r.calc.Buy(screening.SignalInput{
			Symbol:       inst.Symbol,
			Series:       series,
			Fundamentals: fundamentals,
		})
		if err != nil {
			if errors.Is(err, screening.ErrInsufficientData) {
				result.Skipped[inst.Symbol] = "insufficient history"
				continue
			}
			return nil, err
		}

		result.Phases = append(result.Phases, sig.Phase)
		if !sig.Qualified {
			continue
		}

		result.Candidates = append(result.Candidates, contracts.Candidate{
			Symbol: inst.Symbol,
			Name:   inst.Name,
			Kind:   inst.Kind,
			Sector: inst.Sector,
			Theme:  inst.Theme,
			Score:  sig.Score.Total,
		})
	}

	gate, err := r.gate.Check(benchmark, result.Phases)
	if err != nil {
		return nil, err
	}
	result.Gate = gate
	if !gate.Open {
		r.logger.WithField("reason", gate.Reason).Warn("Market gate closed, no candidates selected")
		result.Candidates = nil
		return result, nil
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		if result.Candidates[i].Score != result.Candidates[j].Score {
			return result.Candidates[i].Score > result.Candidates[j].Score
		}
		return result.Candidates[i].Symbol < result.Candidates[j].Symbol
	})

	r.logger.WithFields(map[string]interface{}{
		"scored":     len(result.Phases),
		"qualified":  len(result.Candidates),
		"skipped":    len(result.Skipped),
	}).Info("Universe ranked")
	return result, nil
}
