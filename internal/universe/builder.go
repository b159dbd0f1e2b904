package universe

import (
	"regexp"
	"strings"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Symbols with share-class dots or warrant/unit suffixes that the
// price provider does not serve cleanly.
var unsupportedSymbolPattern = regexp.MustCompile(`[.^/]|(-W[SU]?$)`)

// Universe is the filtered investable pool plus the per-symbol reason
// for every exclusion, so a missing name in the output is always
// explainable.
type Universe struct {
	Instruments []contracts.Instrument
	Excluded    map[string]string
}

// Symbols returns the included symbols in order.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.Instruments))
	for i, inst := range u.Instruments {
		out[i] = inst.Symbol
	}
	return out
}

// Builder applies the liquidity and tradability filters to raw
// constituent lists. Price-dependent filters consult the series lookup;
// a symbol with no series yet passes them and gets filtered on the
// next scan once data exists.
type Builder struct {
	cfg    strategyconfig.Universe
	logger *logger.Logger
}

// NewBuilder creates a builder with the strategy's filters.
func NewBuilder(cfg strategyconfig.Universe, log *logger.Logger) *Builder {
	return &Builder{cfg: cfg, logger: log}
}

// Build filters instruments. series returns the cached price series
// for a symbol, nil when none is cached yet.
func (b *Builder) Build(instruments []contracts.Instrument, series func(symbol string) contracts.PriceSeries) *Universe {
	u := &Universe{Excluded: make(map[string]string)}
	seen := make(map[string]bool)

	for _, inst := range instruments {
		symbol := strings.ToUpper(strings.TrimSpace(inst.Symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		if unsupportedSymbolPattern.MatchString(symbol) {
			u.Excluded[symbol] = "unsupported symbol format"
			continue
		}

		if s := series(symbol); s != nil {
			if reason := b.checkLiquidity(s); reason != "" {
				u.Excluded[symbol] = reason
				continue
			}
		}

		inst.Symbol = symbol
		u.Instruments = append(u.Instruments, inst)
	}

	b.logger.WithFields(map[string]interface{}{
		"included": len(u.Instruments),
		"excluded": len(u.Excluded),
	}).Info("Universe built")
	return u
}

// checkLiquidity applies the price and volume floors. Penny names whip
// around on no liquidity and stop out constantly; they are excluded
// before any scoring happens.
func (b *Builder) checkLiquidity(series contracts.PriceSeries) string {
	last, ok := series.Last()
	if !ok {
		return ""
	}
	if last.Close < b.cfg.MinPrice {
		return "price below minimum"
	}
	if avg, ok := screening.AvgVolume(series, min(len(series), 20)); ok && avg < float64(b.cfg.MinVolume) {
		return "volume below minimum"
	}
	return ""
}
