package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockwatch/marketdata"
)

// Config represents the complete watchlist engine configuration
type Config struct {
	Providers ProvidersConfig `json:"providers" yaml:"providers"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Risk      RiskConfig      `json:"risk" yaml:"risk"`
	Watch     WatchConfig     `json:"watch" yaml:"watch"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Watchlist []WatchEntry    `json:"watchlist" yaml:"watchlist"`
}

// ProvidersConfig contains market data provider credentials and limits.
// API keys may be left empty in the file and supplied via environment.
type ProvidersConfig struct {
	FinnhubAPIKey      string `json:"finnhub_api_key,omitempty" yaml:"finnhub_api_key,omitempty"`
	AlphaVantageAPIKey string `json:"alphavantage_api_key,omitempty" yaml:"alphavantage_api_key,omitempty"`
	RequestsPerMinute  int    `json:"requests_per_minute" yaml:"requests_per_minute"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries"`
	RetryBaseDelay     string `json:"retry_base_delay" yaml:"retry_base_delay"` // e.g., "2s"
}

// CacheConfig contains per-category cache TTLs and the optional Redis tier.
type CacheConfig struct {
	PriceTTL          string `json:"price_ttl" yaml:"price_ttl"`                   // e.g., "5m"
	HistoryTTL        string `json:"history_ttl" yaml:"history_ttl"`               // e.g., "1h"
	RecommendationTTL string `json:"recommendation_ttl" yaml:"recommendation_ttl"` // e.g., "6h"
	RedisAddr         string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
}

// RiskConfig contains volatility stop parameters.
type RiskConfig struct {
	ATRPeriod      int     `json:"atr_period" yaml:"atr_period"`
	ATRMultiplier  float64 `json:"atr_multiplier" yaml:"atr_multiplier"`
	AllowBuySignal bool    `json:"allow_buy_signal" yaml:"allow_buy_signal"`
}

// WatchConfig contains scheduled scan parameters.
type WatchConfig struct {
	Cron        string `json:"cron" yaml:"cron"` // standard 5-field cron spec
	Parallel    bool   `json:"parallel" yaml:"parallel"`
	BatchDelay  string `json:"batch_delay" yaml:"batch_delay"` // delay between symbols when sequential
	HistoryDays int    `json:"history_days" yaml:"history_days"`
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// JournalConfig contains signal journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "csv" or "sqlite"
	SignalsFile string `json:"signals_file,omitempty" yaml:"signals_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// WatchEntry is one symbol on the watchlist.
type WatchEntry struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Region   string `json:"region" yaml:"region"`
	Strategy string `json:"strategy" yaml:"strategy"`
}

// ParseDuration converts a duration config string to time.Duration, with a
// fallback for empty values.
func ParseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content),
// applies environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides secrets and endpoints from the environment so they
// never have to live in the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.FinnhubAPIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantageAPIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Risk.ATRPeriod <= 0 {
		return fmt.Errorf("risk.atr_period must be positive")
	}
	if c.Risk.ATRMultiplier <= 0 {
		return fmt.Errorf("risk.atr_multiplier must be positive")
	}
	if c.Watch.HistoryDays <= 0 {
		return fmt.Errorf("watch.history_days must be positive")
	}
	for _, field := range []struct{ name, value string }{
		{"providers.retry_base_delay", c.Providers.RetryBaseDelay},
		{"cache.price_ttl", c.Cache.PriceTTL},
		{"cache.history_ttl", c.Cache.HistoryTTL},
		{"cache.recommendation_ttl", c.Cache.RecommendationTTL},
		{"watch.batch_delay", c.Watch.BatchDelay},
	} {
		if _, err := ParseDuration(field.value, 0); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	if c.Journal.Type != "" && c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.SignalsFile == "" {
		return fmt.Errorf("journal signals_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	for i, e := range c.Watchlist {
		if e.Symbol == "" {
			return fmt.Errorf("watchlist[%d]: symbol is required", i)
		}
		if _, err := marketdata.ParseRegion(e.Region); err != nil {
			return fmt.Errorf("watchlist[%d] (%s): %w", i, e.Symbol, err)
		}
		if e.Strategy != "position" && e.Strategy != "swing" {
			return fmt.Errorf("watchlist[%d] (%s): strategy must be 'position' or 'swing'", i, e.Symbol)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			RequestsPerMinute: 5,
			MaxRetries:        3,
			RetryBaseDelay:    "2s",
		},
		Cache: CacheConfig{
			PriceTTL:          "5m",
			HistoryTTL:        "1h",
			RecommendationTTL: "6h",
		},
		Risk: RiskConfig{
			ATRPeriod:      14,
			ATRMultiplier:  2.0,
			AllowBuySignal: true,
		},
		Watch: WatchConfig{
			Cron:        "*/30 9-16 * * 1-5",
			Parallel:    true,
			BatchDelay:  "2s",
			HistoryDays: 260,
			MetricsAddr: ":9109",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./signals.db",
		},
	}
}
