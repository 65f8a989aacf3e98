// Package watch runs scheduled scans over the configured watchlist: for
// each symbol it pulls history and a quote, runs the assigned strategy,
// derives the volatility stop and journals the resulting signal.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"stockwatch/indicators"
	"stockwatch/journal"
	"stockwatch/market"
	"stockwatch/marketdata"
	"stockwatch/metrics"
	"stockwatch/pkg/id"
	"stockwatch/risk"
	"stockwatch/strategies"
)

// MarketData is the slice of the orchestrator the monitor needs.
type MarketData interface {
	CurrentPrice(ctx context.Context, symbol string, region marketdata.Region) (marketdata.Quote, error)
	HistoricalSeries(ctx context.Context, symbol string, region marketdata.Region, days int) ([]market.Candle, error)
}

// Entry is one watchlist item to scan.
type Entry struct {
	Symbol   string
	Region   marketdata.Region
	Strategy string
}

// Options tunes a scan run.
type Options struct {
	ATRPeriod      int
	ATRMultiplier  float64
	AllowBuySignal bool
	HistoryDays    int

	// Parallel fans symbols out concurrently; otherwise symbols are
	// scanned in order with BatchDelay between calls.
	Parallel    bool
	BatchDelay  time.Duration
	MaxParallel int // concurrent symbol limit when Parallel, default 4
}

func (o Options) withDefaults() Options {
	if o.ATRPeriod <= 0 {
		o.ATRPeriod = 14
	}
	if o.ATRMultiplier <= 0 {
		o.ATRMultiplier = 2.0
	}
	if o.HistoryDays <= 0 {
		o.HistoryDays = 260
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = 4
	}
	return o
}

// Result is the outcome for one symbol in one scan.
type Result struct {
	Symbol   string
	Region   marketdata.Region
	Strategy string

	Price    float64
	Analysis *strategies.DMAAnalysis
	Stop     *risk.VolatilityStop

	// Skipped is set when the symbol had too little history to analyze.
	Skipped bool
	Err     error
}

// Summary aggregates one scan run.
type Summary struct {
	Started  time.Time
	Duration time.Duration
	OK       int
	Failed   int
	Results  []Result
}

// Monitor scans the watchlist on demand or on a cron schedule. One failing
// symbol never aborts the rest of the batch.
type Monitor struct {
	data    MarketData
	journal journal.Journal
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    Options
	entries []Entry

	cron *cron.Cron
	now  func() time.Time
}

// New creates a monitor. jnl may be nil to disable journaling.
func New(data MarketData, entries []Entry, opts Options, jnl journal.Journal, m *metrics.Metrics, log *slog.Logger) *Monitor {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		data:    data,
		journal: jnl,
		metrics: m,
		log:     log,
		opts:    opts.withDefaults(),
		entries: entries,
		now:     time.Now,
	}
}

// ScanOnce runs one pass over every watchlist entry and returns the summary.
func (m *Monitor) ScanOnce(ctx context.Context) Summary {
	started := m.now()
	m.metrics.ScanRuns.Inc()

	results := make([]Result, len(m.entries))
	if m.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.opts.MaxParallel)
		for i, e := range m.entries {
			i, e := i, e
			g.Go(func() error {
				results[i] = m.scanSymbol(gctx, e)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, e := range m.entries {
			if i > 0 && m.opts.BatchDelay > 0 {
				select {
				case <-time.After(m.opts.BatchDelay):
				case <-ctx.Done():
				}
			}
			results[i] = m.scanSymbol(ctx, e)
		}
	}

	summary := Summary{Started: started, Duration: m.now().Sub(started), Results: results}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			m.metrics.ScanFailures.Inc()
			continue
		}
		summary.OK++
	}

	m.log.Info("scan complete",
		"symbols", len(m.entries),
		"ok", summary.OK,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary
}

func (m *Monitor) scanSymbol(ctx context.Context, e Entry) Result {
	res := Result{Symbol: e.Symbol, Region: e.Region, Strategy: e.Strategy}

	strat := strategies.GetStrategy(e.Strategy)
	if strat == nil {
		res.Err = fmt.Errorf("unknown strategy %q", e.Strategy)
		return res
	}

	series, err := m.data.HistoricalSeries(ctx, e.Symbol, e.Region, m.opts.HistoryDays)
	if err != nil {
		m.log.Warn("history unavailable", "symbol", e.Symbol, "err", err)
		res.Err = err
		return res
	}

	analysis, err := strat.Analyze(series)
	if err != nil {
		res.Err = err
		return res
	}
	if analysis == nil {
		m.log.Debug("insufficient history", "symbol", e.Symbol, "bars", len(series))
		res.Skipped = true
		return res
	}
	res.Analysis = analysis

	quote, err := m.data.CurrentPrice(ctx, e.Symbol, e.Region)
	if err != nil {
		// stale bar close still lets the scan report a signal
		m.log.Warn("quote unavailable, using last close", "symbol", e.Symbol, "err", err)
		quote = marketdata.Quote{Symbol: e.Symbol, Region: e.Region, Price: series[len(series)-1].Close}
	}
	res.Price = quote.Price

	atr, err := indicators.LastATR(series, m.opts.ATRPeriod)
	if err != nil {
		res.Err = err
		return res
	}

	policy := risk.DefaultStopPolicy()
	policy.AllowBuySignal = m.opts.AllowBuySignal
	stop, err := risk.PointStop(quote.Price, atr.ATR, m.opts.ATRMultiplier, policy)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stop = &stop

	m.record(res)
	return res
}

func (m *Monitor) record(r Result) {
	if m.journal == nil || r.Analysis == nil {
		return
	}

	rec := journal.SignalRecord{
		ID:         id.New(),
		Symbol:     r.Symbol,
		Region:     string(r.Region),
		Strategy:   r.Strategy,
		Signal:     string(r.Analysis.Signal),
		Trend:      string(r.Analysis.TrendState),
		Price:      r.Price,
		Note:       r.Analysis.Recommendation,
		RecordedAt: m.now().UTC(),
	}
	if r.Stop != nil {
		rec.Stop = r.Stop.StopLoss
	}

	if err := m.journal.RecordSignal(rec); err != nil {
		m.log.Error("journal write failed", "symbol", r.Symbol, "err", err)
	}
}

// Start schedules recurring scans with the given cron spec and returns after
// the scheduler is running. Stop cancels the schedule.
func (m *Monitor) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		m.ScanOnce(ctx)
	})
	if err != nil {
		return err
	}
	c.Start()
	m.cron = c
	m.log.Info("watch schedule started", "cron", spec, "symbols", len(m.entries))
	return nil
}

// Stop halts the cron schedule. Safe to call when never started.
func (m *Monitor) Stop() {
	if m.cron != nil {
		ctx := m.cron.Stop()
		<-ctx.Done()
	}
}
