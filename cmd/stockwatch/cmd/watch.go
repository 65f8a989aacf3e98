package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockwatch/config"
	"stockwatch/marketdata"
	"stockwatch/metrics"
	"stockwatch/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan the watchlist on a schedule",
	Long: `Run the configured watchlist on a cron schedule. Each scan fetches
history and quotes, runs the per-symbol strategy, computes volatility stops
and journals the emitted signals.

With --once a single scan runs immediately and the command exits.

Examples:
  stockwatch watch -f config.yaml
  stockwatch watch -f config.yaml --once`,
	RunE: runWatch,
}

var watchOnce bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run one scan and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty; add symbols to the config file")
	}

	log := newLogger()
	m := metrics.New()
	o := buildOrchestrator(cfg, m, log)

	jnl, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if jnl != nil {
		defer jnl.Close()
	}

	entries := make([]watch.Entry, 0, len(cfg.Watchlist))
	for _, e := range cfg.Watchlist {
		region, err := marketdata.ParseRegion(e.Region)
		if err != nil {
			return err
		}
		entries = append(entries, watch.Entry{Symbol: e.Symbol, Region: region, Strategy: e.Strategy})
	}

	batchDelay, _ := config.ParseDuration(cfg.Watch.BatchDelay, 2*time.Second)
	monitor := watch.New(o, entries, watch.Options{
		ATRPeriod:      cfg.Risk.ATRPeriod,
		ATRMultiplier:  cfg.Risk.ATRMultiplier,
		AllowBuySignal: cfg.Risk.AllowBuySignal,
		HistoryDays:    cfg.Watch.HistoryDays,
		Parallel:       cfg.Watch.Parallel,
		BatchDelay:     batchDelay,
	}, jnl, m, log)

	if watchOnce {
		summary := monitor.ScanOnce(cmd.Context())
		fmt.Printf("Scanned %d symbols: %d ok, %d failed (%.1fs)\n",
			len(entries), summary.OK, summary.Failed, summary.Duration.Seconds())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Watch.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("metrics listening", "addr", cfg.Watch.MetricsAddr)
	}

	if err := monitor.Start(cfg.Watch.Cron); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	defer monitor.Stop()

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}
