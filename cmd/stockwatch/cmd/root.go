package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stockwatch/config"
	"stockwatch/journal"
	"stockwatch/marketdata"
	"stockwatch/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "A quantitative signal engine for a personal stock watchlist",
	Long: `Stockwatch analyzes watchlist symbols with moving-average strategies
and ATR volatility stops over market data from Yahoo Finance, Finnhub and
Alpha Vantage.

It provides tools for:
  - Analyzing a single symbol on demand
  - Running scheduled scans over the full watchlist
  - Journaling emitted signals to SQLite or CSV
  - Querying past signals`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgPath string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig reads the config file when given, otherwise starts from
// defaults. Environment variables (optionally from a .env file) override
// secrets either way.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	if cfgPath != "" {
		return config.LoadFromFile(cfgPath)
	}

	cfg := config.Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildOrchestrator wires the production provider routing from config.
func buildOrchestrator(cfg *config.Config, m *metrics.Metrics, log *slog.Logger) *marketdata.Orchestrator {
	priceTTL, _ := config.ParseDuration(cfg.Cache.PriceTTL, 5*time.Minute)
	histTTL, _ := config.ParseDuration(cfg.Cache.HistoryTTL, time.Hour)
	recTTL, _ := config.ParseDuration(cfg.Cache.RecommendationTTL, 6*time.Hour)
	retryDelay, _ := config.ParseDuration(cfg.Providers.RetryBaseDelay, 2*time.Second)

	mdCfg := marketdata.Config{
		PriceTTL:          priceTTL,
		HistoryTTL:        histTTL,
		RecommendationTTL: recTTL,
		Metrics:           m,
		Logger:            log,
	}
	if cfg.Cache.RedisAddr != "" {
		mdCfg.Redis = marketdata.NewRedisTier(cfg.Cache.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0)
	}

	o := marketdata.NewOrchestrator(mdCfg)
	o.WireDefaultProviders(cfg.Providers.FinnhubAPIKey, cfg.Providers.AlphaVantageAPIKey,
		marketdata.AlphaVantageOptions{
			RequestsPerMinute: cfg.Providers.RequestsPerMinute,
			MaxRetries:        cfg.Providers.MaxRetries,
			RetryBaseDelay:    retryDelay,
			Metrics:           m,
		})
	return o
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.SignalsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
