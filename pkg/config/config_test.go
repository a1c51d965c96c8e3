package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.EngineMode != "scan" {
		t.Errorf("engine mode = %q, want scan", cfg.EngineMode)
	}
	if cfg.MarketplaceName != "dmarket" {
		t.Errorf("marketplace = %q, want dmarket", cfg.MarketplaceName)
	}
	if len(cfg.Games) != 1 || cfg.Games[0] != "csgo" {
		t.Errorf("games = %v, want [csgo]", cfg.Games)
	}
	if cfg.ScanInterval != 60*time.Second {
		t.Errorf("scan interval = %v, want 60s", cfg.ScanInterval)
	}
	if cfg.MinProfitPercent != 10.0 {
		t.Errorf("min profit = %v, want 10", cfg.MinProfitPercent)
	}
	if cfg.RiskTier != "low" {
		t.Errorf("risk tier = %q, want low", cfg.RiskTier)
	}
	if cfg.ErrorPauseThreshold != 3 || cfg.ErrorLongPauseThreshold != 10 {
		t.Errorf("error thresholds = %d/%d, want 3/10", cfg.ErrorPauseThreshold, cfg.ErrorLongPauseThreshold)
	}
	if cfg.ErrorPauseDuration != 15*time.Minute || cfg.ErrorLongPauseDuration != time.Hour {
		t.Errorf("pause durations = %v/%v, want 15m/1h", cfg.ErrorPauseDuration, cfg.ErrorLongPauseDuration)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("retention days = %d, want 30", cfg.RetentionDays)
	}
	if cfg.StaleQuotePercent != 5.0 {
		t.Errorf("stale quote percent = %v, want 5", cfg.StaleQuotePercent)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_MODE", "trade")
	t.Setenv("GAMES", "csgo, dota2 ,rust")
	t.Setenv("RISK_TIER", "high")
	t.Setenv("SCAN_INTERVAL", "2m")
	t.Setenv("MIN_PROFIT_PERCENT", "12.5")
	t.Setenv("SCAN_PRICE_FROM", "500")
	t.Setenv("SCAN_PRICE_TO", "50000")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.EngineMode != "trade" || cfg.RiskTier != "high" {
		t.Errorf("mode/tier = %s/%s", cfg.EngineMode, cfg.RiskTier)
	}
	if len(cfg.Games) != 3 || cfg.Games[1] != "dota2" {
		t.Errorf("games = %v, want [csgo dota2 rust]", cfg.Games)
	}
	if cfg.ScanInterval != 2*time.Minute {
		t.Errorf("scan interval = %v, want 2m", cfg.ScanInterval)
	}
	if cfg.MinProfitPercent != 12.5 {
		t.Errorf("min profit = %v, want 12.5", cfg.MinProfitPercent)
	}
	if cfg.ScanPriceFrom != 500 || cfg.ScanPriceTo != 50000 {
		t.Errorf("price range = [%d, %d]", cfg.ScanPriceFrom, cfg.ScanPriceTo)
	}
}

func TestLoadFromEnvIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "sometimes")
	t.Setenv("MIN_PROFIT_PERCENT", "lots")
	t.Setenv("MAX_TRADES", "3.5")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.ScanInterval != 60*time.Second {
		t.Errorf("scan interval = %v, want default 60s", cfg.ScanInterval)
	}
	if cfg.MinProfitPercent != 10.0 {
		t.Errorf("min profit = %v, want default 10", cfg.MinProfitPercent)
	}
	if cfg.MaxTrades != 0 {
		t.Errorf("max trades = %d, want default 0", cfg.MaxTrades)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:           "8080",
			MarketplaceBaseURL: "https://api.dmarket.com",
			EngineMode:         "scan",
			RiskTier:           "low",
			Games:              []string{"csgo"},
			MinProfitPercent:   10,
			FeePercent:         7,
			MinMarginPercent:   5,
			ScanPriceFrom:      100,
			ScanPriceTo:        10000,
			RetentionDays:      30,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "empty-base-url", mutate: func(c *Config) { c.MarketplaceBaseURL = "" }, wantErr: true},
		{name: "bad-engine-mode", mutate: func(c *Config) { c.EngineMode = "yolo" }, wantErr: true},
		{name: "bad-risk-tier", mutate: func(c *Config) { c.RiskTier = "extreme" }, wantErr: true},
		{name: "no-games", mutate: func(c *Config) { c.Games = nil }, wantErr: true},
		{name: "negative-min-profit", mutate: func(c *Config) { c.MinProfitPercent = -1 }, wantErr: true},
		{name: "fee-at-100-percent", mutate: func(c *Config) { c.FeePercent = 100 }, wantErr: true},
		{name: "negative-margin", mutate: func(c *Config) { c.MinMarginPercent = -1 }, wantErr: true},
		{name: "inverted-price-range", mutate: func(c *Config) { c.ScanPriceTo = 50 }, wantErr: true},
		{name: "open-ended-price-range", mutate: func(c *Config) { c.ScanPriceTo = 0 }, wantErr: false},
		{name: "zero-retention", mutate: func(c *Config) { c.RetentionDays = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" csgo ,, dota2,rust, ")
	if len(got) != 3 || got[0] != "csgo" || got[1] != "dota2" || got[2] != "rust" {
		t.Errorf("splitList = %v", got)
	}
}
