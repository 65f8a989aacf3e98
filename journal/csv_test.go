package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSVJournalHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "signals.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	header, err := reader.Read()
	assert.NoError(t, err)

	want := []string{"id", "symbol", "region", "strategy", "signal", "trend", "price", "stop", "note", "recorded_at"}
	assert.Equal(t, want, header)
}

func TestCSVJournalRecordSignal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "signals.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)

	ts := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

	err = j.RecordSignal(SignalRecord{
		ID:         "S1",
		Symbol:     "RELIANCE",
		Region:     "IN",
		Strategy:   "position",
		Signal:     "SELL_PARTIAL",
		Trend:      "BULLISH",
		Price:      2456.75,
		Stop:       2310.2,
		Note:       "below 50dma",
		RecordedAt: ts,
	})
	assert.NoError(t, err)

	assert.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"S1",
		"RELIANCE",
		"IN",
		"position",
		"SELL_PARTIAL",
		"BULLISH",
		"2456.7500",
		"2310.2000",
		"below 50dma",
		ts.Format(time.RFC3339),
	}
	assert.Equal(t, want, row)
}

func TestCSVJournalMultipleRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "signals.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)

	base := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	for i, sym := range []string{"RELIANCE", "TCS", "INFY"} {
		err := j.RecordSignal(SignalRecord{
			ID:         sym,
			Symbol:     sym,
			Region:     "IN",
			Strategy:   "swing",
			Signal:     "HOLD",
			Trend:      "NEUTRAL",
			Price:      100,
			Stop:       90,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(t, err)
	}
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	rows, err := reader.ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 4) // header + 3 records
	assert.Equal(t, "TCS", rows[2][0])
}
