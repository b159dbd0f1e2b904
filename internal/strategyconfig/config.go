package strategyconfig

// Config is the full screening strategy definition. All scoring weights
// and thresholds live here; the code reads them from a loaded Config and
// never hardcodes them.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Scan      Scan      `yaml:"scan" json:"scan"`
	Trend     Trend     `yaml:"trend" json:"trend"`
	Buy       Buy       `yaml:"buy" json:"buy"`
	Sell      Sell      `yaml:"sell" json:"sell"`
	Compounder Compounder `yaml:"compounder" json:"compounder"`
	ETF       ETF       `yaml:"etf" json:"etf"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
}

// Meta identifies the strategy revision.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Universe holds the investable-pool filters.
type Universe struct {
	MinPrice  float64 `yaml:"min_price" json:"min_price"`
	MinVolume int64   `yaml:"min_volume" json:"min_volume"`
}

// Scan holds pipeline and limiter tuning.
type Scan struct {
	Workers          int      `yaml:"workers" json:"workers"`
	MaxAttempts      int      `yaml:"max_attempts" json:"max_attempts"`
	RetryBackoff     Duration `yaml:"retry_backoff" json:"retry_backoff"`
	BaseDelay        Duration `yaml:"base_delay" json:"base_delay"`
	DelayStep        Duration `yaml:"delay_step" json:"delay_step"`
	DelayCeiling     Duration `yaml:"delay_ceiling" json:"delay_ceiling"`
	ErrorThreshold   int      `yaml:"error_threshold" json:"error_threshold"`
	Cooldown         Duration `yaml:"cooldown" json:"cooldown"`
	SuccessThreshold int      `yaml:"success_threshold" json:"success_threshold"`
	DecayStep        Duration `yaml:"decay_step" json:"decay_step"`
	CacheMaxAge      Duration `yaml:"cache_max_age" json:"cache_max_age"`
	EarningsCacheMaxAge Duration `yaml:"earnings_cache_max_age" json:"earnings_cache_max_age"`
}

// Trend holds the phase classifier parameters.
type Trend struct {
	MAShort     int `yaml:"ma_short" json:"ma_short"`
	MALong      int `yaml:"ma_long" json:"ma_long"`
	SlopeWindow int `yaml:"slope_window" json:"slope_window"`
	MinBars     int `yaml:"min_bars" json:"min_bars"`
}

// Buy holds the buy-signal component maxima. The total can exceed 100;
// the composite is capped separately.
type Buy struct {
	TrendMax        float64 `yaml:"trend_max" json:"trend_max"`
	FundamentalsMax float64 `yaml:"fundamentals_max" json:"fundamentals_max"`
	VolumeMax       float64 `yaml:"volume_max" json:"volume_max"`
	RSMax           float64 `yaml:"rs_max" json:"rs_max"`
	RiskRewardMax   float64 `yaml:"risk_reward_max" json:"risk_reward_max"`
	EntryMax        float64 `yaml:"entry_max" json:"entry_max"`
	Cap             float64 `yaml:"cap" json:"cap"`
	Threshold       float64 `yaml:"threshold" json:"threshold"`
}

// Sell holds the sell-signal component maxima and severity floor.
type Sell struct {
	BreakdownMax float64 `yaml:"breakdown_max" json:"breakdown_max"`
	VolumeMax    float64 `yaml:"volume_max" json:"volume_max"`
	RSMax        float64 `yaml:"rs_max" json:"rs_max"`
	Threshold    float64 `yaml:"threshold" json:"threshold"`
}

// Compounder holds the long-term equity score weights.
type Compounder struct {
	GrowthMax       float64 `yaml:"growth_max" json:"growth_max"`
	EfficiencyMax   float64 `yaml:"efficiency_max" json:"efficiency_max"`
	DurabilityMax   float64 `yaml:"durability_max" json:"durability_max"`
	MoatBonusMax    float64 `yaml:"moat_bonus_max" json:"moat_bonus_max"`
	Threshold       float64 `yaml:"threshold" json:"threshold"`
}

// ETF holds the thematic fund score weights.
type ETF struct {
	PurityMax   float64 `yaml:"purity_max" json:"purity_max"`
	RSMax       float64 `yaml:"rs_max" json:"rs_max"`
	CostMax     float64 `yaml:"cost_max" json:"cost_max"`
	TailwindMax float64 `yaml:"tailwind_max" json:"tailwind_max"`
	Threshold   float64 `yaml:"threshold" json:"threshold"`
}

// Portfolio holds the construction constraints. Percent fields are in
// percentage points (10 == 10%).
type Portfolio struct {
	CoreCount         int     `yaml:"core_count" json:"core_count"`
	SatelliteCount    int     `yaml:"satellite_count" json:"satellite_count"`
	CorePct           float64 `yaml:"core_pct" json:"core_pct"`
	SatellitePct      float64 `yaml:"satellite_pct" json:"satellite_pct"`
	PositionMaxPct    float64 `yaml:"position_max_pct" json:"position_max_pct"`
	SectorMaxPct      float64 `yaml:"sector_max_pct" json:"sector_max_pct"`
	ThemeMaxPct       float64 `yaml:"theme_max_pct" json:"theme_max_pct"`
	DriftThresholdPct float64 `yaml:"drift_threshold_pct" json:"drift_threshold_pct"`
}
