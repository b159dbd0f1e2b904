package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 50, cfg.Trend.MAShort)
	assert.Equal(t, 200, cfg.Trend.MALong)
	assert.Equal(t, 110.0, cfg.Buy.Cap)
	assert.Equal(t, 60.0, cfg.Buy.Threshold)
}

func TestParseOverridesDefaults(t *testing.T) {
	yml := []byte(`
meta:
  strategy_id: test-strategy
universe:
  min_price: 10.0
scan:
  workers: 5
`)
	cfg, err := Parse(yml)
	require.NoError(t, err)

	assert.Equal(t, "test-strategy", cfg.Meta.StrategyID)
	assert.Equal(t, 10.0, cfg.Universe.MinPrice)
	assert.Equal(t, 5, cfg.Scan.Workers)
	// untouched fields keep defaults
	assert.Equal(t, int64(100_000), cfg.Universe.MinVolume)
	assert.Equal(t, 200, cfg.Trend.MALong)
}

func TestParseDurationStrings(t *testing.T) {
	yml := []byte(`
scan:
  base_delay: 750ms
  cache_max_age: 12h
`)
	cfg, err := Parse(yml)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Scan.BaseDelay.Std())
	assert.Equal(t, 12*time.Hour, cfg.Scan.CacheMaxAge.Std())
	// untouched durations keep defaults
	assert.Equal(t, 30*time.Second, cfg.Scan.Cooldown.Std())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	yml := []byte(`
meta:
  strategy_id: test
  not_a_field: true
`)
	_, err := Parse(yml)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"ceiling below base", func(c *Config) { c.Scan.DelayCeiling = c.Scan.BaseDelay / 2 }, "scan.delay_ceiling"},
		{"zero retry backoff", func(c *Config) { c.Scan.RetryBackoff = 0 }, "scan.retry_backoff"},
		{"ma_long below ma_short", func(c *Config) { c.Trend.MALong = 40 }, "trend.ma_long"},
		{"min_bars too small", func(c *Config) { c.Trend.MinBars = 100 }, "trend.min_bars"},
		{"threshold above cap", func(c *Config) { c.Buy.Threshold = 200 }, "buy.threshold"},
		{"core+satellite not 100", func(c *Config) { c.Portfolio.CorePct = 60 }, "portfolio"},
		{"sector cap below position cap", func(c *Config) { c.Portfolio.SectorMaxPct = 5 }, "portfolio.sector_max_pct"},
		{"infeasible caps", func(c *Config) {
			c.Portfolio.CoreCount = 3
			c.Portfolio.SatelliteCount = 0
			c.Portfolio.PositionMaxPct = 10
		}, "portfolio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := Default()
	changed.Buy.Threshold = 65
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  strategy_id: from-file\n"), 0o644))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Meta.StrategyID)
	assert.NotEmpty(t, raw)

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
