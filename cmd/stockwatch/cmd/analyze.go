package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"stockwatch/indicators"
	"stockwatch/marketdata"
	"stockwatch/metrics"
	"stockwatch/risk"
	"stockwatch/strategies"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Analyze a single symbol",
	Long: `Fetch history for a symbol, run the selected moving-average strategy
and compute the ATR volatility stop.

Examples:
  stockwatch analyze RELIANCE
  stockwatch analyze AAPL --region US --strategy swing
  stockwatch analyze TCS --days 400 --recommendations`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeRegion   string
	analyzeStrategy string
	analyzeDays     int
	analyzeRecs     bool
	analyzeTrailing int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeRegion, "region", "r", "IN", "market region (IN or US)")
	analyzeCmd.Flags().StringVarP(&analyzeStrategy, "strategy", "s", "position", "strategy (position or swing)")
	analyzeCmd.Flags().IntVarP(&analyzeDays, "days", "d", 260, "history depth in days")
	analyzeCmd.Flags().BoolVar(&analyzeRecs, "recommendations", false, "include analyst recommendations")
	analyzeCmd.Flags().IntVar(&analyzeTrailing, "trailing", 0, "show the last N trailing stop bars")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	region, err := marketdata.ParseRegion(analyzeRegion)
	if err != nil {
		return err
	}

	strat := strategies.GetStrategy(analyzeStrategy)
	if strat == nil {
		return fmt.Errorf("unknown strategy %q", analyzeStrategy)
	}

	log := newLogger()
	o := buildOrchestrator(cfg, metrics.New(), log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	series, err := o.HistoricalSeries(ctx, symbol, region, analyzeDays)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	analysis, err := strat.Analyze(series)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if analysis == nil {
		fmt.Printf("%s: only %d bars of history, need %d for a DMA analysis\n",
			symbol, len(series), strategies.MinBars)
		return nil
	}
	analysis = analysis.Rounded(2)

	price := analysis.CurrentPrice
	if quote, err := o.CurrentPrice(ctx, symbol, region); err == nil {
		price = quote.Price
	} else {
		log.Warn("quote unavailable, using last close", "symbol", symbol, "err", err)
	}

	atr, err := indicators.LastATR(series, cfg.Risk.ATRPeriod)
	if err != nil {
		return fmt.Errorf("atr: %w", err)
	}
	policy := risk.DefaultStopPolicy()
	policy.AllowBuySignal = cfg.Risk.AllowBuySignal
	stop, err := risk.PointStop(price, atr.ATR, cfg.Risk.ATRMultiplier, policy)
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	stop = stop.Rounded(2)

	renderAnalysis(symbol, region, analyzeStrategy, price, analysis, stop)

	if analyzeTrailing > 0 {
		points, err := risk.TrailingStops(series, cfg.Risk.ATRPeriod, cfg.Risk.ATRMultiplier)
		if err != nil {
			return fmt.Errorf("trailing stops: %w", err)
		}
		if len(points) > analyzeTrailing {
			points = points[len(points)-analyzeTrailing:]
		}
		renderTrailing(points)
	}

	if analyzeRecs {
		recs, err := o.Recommendations(ctx, symbol, region)
		if err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}
		renderRecommendations(recs)
	}
	return nil
}

func renderAnalysis(symbol string, region marketdata.Region, strategy string, price float64, a *strategies.DMAAnalysis, stop risk.VolatilityStop) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s (%s, %s strategy)", symbol, region, strategy))
	t.AppendRows([]table.Row{
		{"Price", fmt.Sprintf("%.2f", price)},
		{"Trend", a.TrendState},
		{"Signal", a.Signal},
		{"50 DMA", fmt.Sprintf("%.2f (%+.2f%%)", a.DMA50, a.DistFromDMA50)},
		{"150 DMA", fmt.Sprintf("%.2f (%+.2f%%)", a.DMA150, a.DistFromDMA150)},
		{"200 DMA", fmt.Sprintf("%.2f (%+.2f%%)", a.DMA200, a.DistFromDMA200)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"ATR", fmt.Sprintf("%.2f", stop.ATR)},
		{"Stop Loss", fmt.Sprintf("%.2f (%.2f%%)", stop.StopLoss, stop.StopLossPercentage)},
		{"Stop Signal", stop.Recommendation},
	})
	if a.Recommendation != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Note", a.Recommendation})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderTrailing(points []risk.TrailingStopPoint) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Trailing Stop")
	t.AppendHeader(table.Row{"Date", "Close", "ATR", "Stop", "Dist %", "Trend", "Signal"})
	for _, p := range points {
		p = p.Rounded(2)
		t.AppendRow(table.Row{p.Date, p.Close, p.ATR, p.StopLoss, p.StopLossPercentage, p.Trend, p.Signal})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderRecommendations(recs []marketdata.Recommendation) {
	if len(recs) == 0 {
		fmt.Println("No analyst coverage.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Analyst Recommendations")
	t.AppendHeader(table.Row{"Period", "Strong Buy", "Buy", "Hold", "Sell", "Strong Sell"})
	for _, r := range recs {
		t.AppendRow(table.Row{r.Period, r.StrongBuy, r.Buy, r.Hold, r.Sell, r.StrongSell})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
