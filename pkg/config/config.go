package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data provider
	Provider ProviderConfig

	// Scan engine
	Scan ScanConfig

	// Universe source
	Universe UniverseConfig

	// Filesystem layout
	DataDir     string // root for cache, checkpoints and reports
	StrategyYML string // strategy parameter file (anchors, weights)

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ProviderConfig holds quote/fundamentals provider configuration
type ProviderConfig struct {
	BaseURL        string
	FMPBaseURL     string
	FMPAPIKey      string
	RequestTimeout time.Duration
}

// UniverseConfig holds the constituent source and the relative
// strength benchmark.
type UniverseConfig struct {
	SourceBaseURL string // host serving the constituent table pages
	SourcePath    string
	Benchmark     string // symbol every RS comparison is made against
}

// ScanConfig holds fetch pipeline defaults. Presets (conservative,
// default, aggressive) override Workers and BaseDelay at the CLI layer.
type ScanConfig struct {
	Workers     int
	BaseDelay   time.Duration
	MaxAttempts int
	MinPrice    float64
	MinVolume   int64
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com"),
			FMPBaseURL:     getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			FMPAPIKey:      getEnv("FMP_API_KEY", ""),
			RequestTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", "30s"),
		},

		Scan: ScanConfig{
			Workers:     getEnvAsInt("SCAN_WORKERS", 3),
			BaseDelay:   getEnvAsDuration("SCAN_BASE_DELAY", "500ms"),
			MaxAttempts: getEnvAsInt("SCAN_MAX_ATTEMPTS", 3),
			MinPrice:    getEnvAsFloat("SCAN_MIN_PRICE", 5.0),
			MinVolume:   int64(getEnvAsInt("SCAN_MIN_VOLUME", 100000)),
		},

		Universe: UniverseConfig{
			SourceBaseURL: getEnv("UNIVERSE_SOURCE_URL", "https://stockanalysis.com"),
			SourcePath:    getEnv("UNIVERSE_SOURCE_PATH", "/list/sp-500-stocks/"),
			Benchmark:     getEnv("BENCHMARK_SYMBOL", "SPY"),
		},

		DataDir:     getEnv("DATA_DIR", "data"),
		StrategyYML: getEnv("STRATEGY_CONFIG", "config/strategy/us_long_hold.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}

	if c.Scan.BaseDelay <= 0 {
		return fmt.Errorf("SCAN_BASE_DELAY must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
