package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Engine mode: "scan" (detection only) or "trade" (full auto-trading).
	EngineMode string

	// Marketplace API
	MarketplaceName    string
	MarketplaceBaseURL string
	MarketplaceAPIKey  string
	MarketplaceTimeout time.Duration
	MarketplaceRPS     float64

	// Scanning
	Games             []string
	ScanInterval      time.Duration
	ScanTTL           time.Duration
	ScanPriceFrom     int64 // cents
	ScanPriceTo       int64 // cents
	ScanListingsLimit int
	MaxOpportunities  int
	MinProfitPercent  float64

	// Trading
	RiskTier          string
	MaxTradeValue     float64 // dollars, clamped by tier
	MaxTrades         int
	TradePacing       time.Duration
	StaleQuotePercent float64
	MinMarginPercent  float64
	FeePercent        float64

	// Error backoff
	ErrorPauseThreshold     int
	ErrorLongPauseThreshold int
	ErrorPauseDuration      time.Duration
	ErrorLongPauseDuration  time.Duration

	// Retention
	RetentionDays   int
	CleanupInterval time.Duration

	// Storage
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		EngineMode: getEnvOrDefault("ENGINE_MODE", "scan"),

		MarketplaceName:    getEnvOrDefault("MARKETPLACE_NAME", "dmarket"),
		MarketplaceBaseURL: getEnvOrDefault("MARKETPLACE_BASE_URL", "https://api.dmarket.com"),
		MarketplaceAPIKey:  os.Getenv("MARKETPLACE_API_KEY"),
		MarketplaceTimeout: getDurationOrDefault("MARKETPLACE_TIMEOUT", 30*time.Second),
		MarketplaceRPS:     getFloat64OrDefault("MARKETPLACE_RPS", 5.0),

		Games:             splitList(getEnvOrDefault("GAMES", "csgo")),
		ScanInterval:      getDurationOrDefault("SCAN_INTERVAL", 60*time.Second),
		ScanTTL:           getDurationOrDefault("SCAN_CACHE_TTL", 5*time.Minute),
		ScanPriceFrom:     getInt64OrDefault("SCAN_PRICE_FROM", 100),
		ScanPriceTo:       getInt64OrDefault("SCAN_PRICE_TO", 10000),
		ScanListingsLimit: getIntOrDefault("SCAN_LISTINGS_LIMIT", 500),
		MaxOpportunities:  getIntOrDefault("MAX_OPPORTUNITIES", 50),
		MinProfitPercent:  getFloat64OrDefault("MIN_PROFIT_PERCENT", 10.0),

		RiskTier:          getEnvOrDefault("RISK_TIER", "low"),
		MaxTradeValue:     getFloat64OrDefault("MAX_TRADE_VALUE", 0),
		MaxTrades:         getIntOrDefault("MAX_TRADES", 0),
		TradePacing:       getDurationOrDefault("TRADE_PACING", time.Second),
		StaleQuotePercent: getFloat64OrDefault("STALE_QUOTE_PERCENT", 5.0),
		MinMarginPercent:  getFloat64OrDefault("MIN_MARGIN_PERCENT", 5.0),
		FeePercent:        getFloat64OrDefault("MARKETPLACE_FEE_PERCENT", 7.0),

		ErrorPauseThreshold:     getIntOrDefault("ERROR_PAUSE_THRESHOLD", 3),
		ErrorLongPauseThreshold: getIntOrDefault("ERROR_LONG_PAUSE_THRESHOLD", 10),
		ErrorPauseDuration:      getDurationOrDefault("ERROR_PAUSE_DURATION", 15*time.Minute),
		ErrorLongPauseDuration:  getDurationOrDefault("ERROR_LONG_PAUSE_DURATION", time.Hour),

		RetentionDays:   getIntOrDefault("RETENTION_DAYS", 30),
		CleanupInterval: getDurationOrDefault("CLEANUP_INTERVAL", 24*time.Hour),

		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "skinflip"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "skinflip123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "skinflip"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.MarketplaceBaseURL == "" {
		return fmt.Errorf("MARKETPLACE_BASE_URL cannot be empty")
	}

	if c.EngineMode != "scan" && c.EngineMode != "trade" {
		return fmt.Errorf("ENGINE_MODE must be 'scan' or 'trade', got %q", c.EngineMode)
	}

	if c.RiskTier != "low" && c.RiskTier != "medium" && c.RiskTier != "high" {
		return fmt.Errorf("RISK_TIER must be 'low', 'medium' or 'high', got %q", c.RiskTier)
	}

	if len(c.Games) == 0 {
		return fmt.Errorf("GAMES cannot be empty")
	}

	if c.MinProfitPercent < 0 {
		return fmt.Errorf("MIN_PROFIT_PERCENT cannot be negative, got %f", c.MinProfitPercent)
	}

	if c.FeePercent < 0 || c.FeePercent >= 100 {
		return fmt.Errorf("MARKETPLACE_FEE_PERCENT must be in [0, 100), got %f", c.FeePercent)
	}

	if c.MinMarginPercent < 0 {
		return fmt.Errorf("MIN_MARGIN_PERCENT cannot be negative, got %f", c.MinMarginPercent)
	}

	if c.ScanPriceFrom < 0 || (c.ScanPriceTo > 0 && c.ScanPriceTo <= c.ScanPriceFrom) {
		return fmt.Errorf("invalid scan price range [%d, %d]", c.ScanPriceFrom, c.ScanPriceTo)
	}

	if c.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive, got %d", c.RetentionDays)
	}

	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
