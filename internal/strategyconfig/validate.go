package strategyconfig

import "fmt"

// ValidationError is a fatal config problem; the program refuses to run
// with an invalid strategy.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Universe ===
	if cfg.Universe.MinPrice < 0 {
		return ValidationError{"universe.min_price", "must be >= 0"}
	}
	if cfg.Universe.MinVolume < 0 {
		return ValidationError{"universe.min_volume", "must be >= 0"}
	}

	// === Scan ===
	if cfg.Scan.Workers < 1 {
		return ValidationError{"scan.workers", "must be >= 1"}
	}
	if cfg.Scan.MaxAttempts < 1 {
		return ValidationError{"scan.max_attempts", "must be >= 1"}
	}
	if cfg.Scan.RetryBackoff <= 0 {
		return ValidationError{"scan.retry_backoff", "must be > 0"}
	}
	if cfg.Scan.BaseDelay <= 0 {
		return ValidationError{"scan.base_delay", "must be > 0"}
	}
	if cfg.Scan.DelayCeiling < cfg.Scan.BaseDelay {
		return ValidationError{"scan.delay_ceiling", "must be >= base_delay"}
	}
	if cfg.Scan.ErrorThreshold < 1 {
		return ValidationError{"scan.error_threshold", "must be >= 1"}
	}
	if cfg.Scan.SuccessThreshold < 1 {
		return ValidationError{"scan.success_threshold", "must be >= 1"}
	}

	// === Trend ===
	if cfg.Trend.MAShort < 2 {
		return ValidationError{"trend.ma_short", "must be >= 2"}
	}
	if cfg.Trend.MALong <= cfg.Trend.MAShort {
		return ValidationError{"trend.ma_long", "must be > ma_short"}
	}
	if cfg.Trend.SlopeWindow < 2 {
		return ValidationError{"trend.slope_window", "must be >= 2"}
	}
	if cfg.Trend.MinBars < cfg.Trend.MALong {
		return ValidationError{"trend.min_bars", "must be >= ma_long"}
	}

	// === Signal weights ===
	if cfg.Buy.Cap <= 0 {
		return ValidationError{"buy.cap", "must be > 0"}
	}
	if cfg.Buy.Threshold <= 0 || cfg.Buy.Threshold > cfg.Buy.Cap {
		return ValidationError{"buy.threshold", fmt.Sprintf("must be in (0, %.0f]", cfg.Buy.Cap)}
	}
	buyMax := cfg.Buy.TrendMax + cfg.Buy.FundamentalsMax + cfg.Buy.VolumeMax +
		cfg.Buy.RSMax + cfg.Buy.RiskRewardMax + cfg.Buy.EntryMax
	if buyMax < cfg.Buy.Cap {
		return ValidationError{"buy", fmt.Sprintf("component maxima sum %.0f below cap %.0f", buyMax, cfg.Buy.Cap)}
	}

	sellMax := cfg.Sell.BreakdownMax + cfg.Sell.VolumeMax + cfg.Sell.RSMax
	if cfg.Sell.Threshold <= 0 || cfg.Sell.Threshold > sellMax {
		return ValidationError{"sell.threshold", fmt.Sprintf("must be in (0, %.0f]", sellMax)}
	}

	// === Portfolio ===
	p := cfg.Portfolio
	if p.CoreCount < 1 {
		return ValidationError{"portfolio.core_count", "must be >= 1"}
	}
	if p.SatelliteCount < 0 {
		return ValidationError{"portfolio.satellite_count", "must be >= 0"}
	}
	if p.CorePct+p.SatellitePct != 100 {
		return ValidationError{"portfolio", fmt.Sprintf("core_pct + satellite_pct must equal 100, got %.1f", p.CorePct+p.SatellitePct)}
	}
	if p.PositionMaxPct <= 0 || p.PositionMaxPct > 100 {
		return ValidationError{"portfolio.position_max_pct", "must be in (0, 100]"}
	}
	if p.SectorMaxPct < p.PositionMaxPct {
		return ValidationError{"portfolio.sector_max_pct", "must be >= position_max_pct"}
	}
	if p.ThemeMaxPct < p.PositionMaxPct {
		return ValidationError{"portfolio.theme_max_pct", "must be >= position_max_pct"}
	}
	// Feasibility: caps must leave room for 100%.
	totalPositions := p.CoreCount + p.SatelliteCount
	if float64(totalPositions)*p.PositionMaxPct < 100 {
		return ValidationError{"portfolio", fmt.Sprintf("%d positions at max %.1f%% cannot reach 100%%", totalPositions, p.PositionMaxPct)}
	}
	if p.DriftThresholdPct < 0 {
		return ValidationError{"portfolio.drift_threshold_pct", "must be >= 0"}
	}

	return nil
}
