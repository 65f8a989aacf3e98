package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"stockwatch/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled signals",
	Long: `Query and display signal records from the SQLite journal.

Subcommands:
  signal  - Get details of a specific signal by ID
  latest  - Show the most recent signal for a symbol
  today   - List signals recorded today
  day     - List signals recorded on a specific day

Examples:
  stockwatch journal signal <signal-id>
  stockwatch journal latest RELIANCE
  stockwatch journal today
  stockwatch journal day 2025-08-15`,
}

var journalSignalCmd = &cobra.Command{
	Use:   "signal <signal-id>",
	Short: "Get details of a specific signal",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSignal,
}

var journalLatestCmd = &cobra.Command{
	Use:   "latest <symbol>",
	Short: "Show the most recent signal for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalLatest,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List signals recorded today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List signals recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalSignalCmd)
	journalCmd.AddCommand(journalLatestCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./signals.db", "path to SQLite journal DB")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalSignal(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetSignal(args[0])
	if err != nil {
		return fmt.Errorf("get signal: %w", err)
	}

	renderSignals([]journal.SignalRecord{rec})
	return nil
}

func runJournalLatest(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.LatestBySymbol(args[0])
	if err != nil {
		return fmt.Errorf("latest signal: %w", err)
	}

	renderSignals([]journal.SignalRecord{rec})
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return listDay(time.Now().In(loc).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(args[0])
}

func listDay(day string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListSignalsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query signals: %w", err)
	}
	if len(recs) == 0 {
		fmt.Printf("No signals recorded on %s.\n", day)
		return nil
	}

	renderSignals(recs)
	return nil
}

func renderSignals(recs []journal.SignalRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Time", "Symbol", "Region", "Strategy", "Signal", "Trend", "Price", "Stop", "Note"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.RecordedAt.Local().Format("2006-01-02 15:04"),
			r.Symbol,
			r.Region,
			r.Strategy,
			r.Signal,
			r.Trend,
			fmt.Sprintf("%.2f", r.Price),
			fmt.Sprintf("%.2f", r.Stop),
			r.Note,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
