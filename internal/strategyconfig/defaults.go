package strategyconfig

import "time"

// Default returns the built-in strategy values. Loaded YAML overrides
// whatever fields it sets; everything else keeps these.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "us-long-hold",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Universe: Universe{
			MinPrice:  5.0,
			MinVolume: 100_000,
		},
		Scan: Scan{
			Workers:             3,
			MaxAttempts:         3,
			RetryBackoff:        Duration(time.Second),
			BaseDelay:           Duration(500 * time.Millisecond),
			DelayStep:           Duration(500 * time.Millisecond),
			DelayCeiling:        Duration(5 * time.Second),
			ErrorThreshold:      3,
			Cooldown:            Duration(30 * time.Second),
			SuccessThreshold:    10,
			DecayStep:           Duration(250 * time.Millisecond),
			CacheMaxAge:         Duration(24 * time.Hour),
			EarningsCacheMaxAge: Duration(6 * time.Hour),
		},
		Trend: Trend{
			MAShort:     50,
			MALong:      200,
			SlopeWindow: 20,
			MinBars:     200,
		},
		Buy: Buy{
			TrendMax:        50,
			FundamentalsMax: 30,
			VolumeMax:       10,
			RSMax:           10,
			RiskRewardMax:   5,
			EntryMax:        5,
			Cap:             110,
			Threshold:       60,
		},
		Sell: Sell{
			BreakdownMax: 60,
			VolumeMax:    30,
			RSMax:        10,
			Threshold:    60,
		},
		Compounder: Compounder{
			GrowthMax:     60,
			EfficiencyMax: 25,
			DurabilityMax: 15,
			MoatBonusMax:  10,
			Threshold:     70,
		},
		ETF: ETF{
			PurityMax:   30,
			RSMax:       40,
			CostMax:     20,
			TailwindMax: 10,
			Threshold:   60,
		},
		Portfolio: Portfolio{
			CoreCount:         8,
			SatelliteCount:    4,
			CorePct:           70,
			SatellitePct:      30,
			PositionMaxPct:    10,
			SectorMaxPct:      30,
			ThemeMaxPct:       25,
			DriftThresholdPct: 2,
		},
	}
}
