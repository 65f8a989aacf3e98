// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	signals *csv.Writer
	sf      *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	sf, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	sw := csv.NewWriter(sf)

	if err := sw.Write([]string{"id", "symbol", "region", "strategy", "signal", "trend", "price", "stop", "note", "recorded_at"}); err != nil {
		return nil, err
	}

	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{sw, sf}, nil
}

func (j *CSVJournal) RecordSignal(r SignalRecord) error {
	err := j.signals.Write([]string{
		r.ID,
		r.Symbol,
		r.Region,
		r.Strategy,
		r.Signal,
		r.Trend,
		f(r.Price),
		f(r.Stop),
		r.Note,
		r.RecordedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	j.signals.Flush()
	return j.signals.Error()
}

func (j *CSVJournal) Close() error {
	j.signals.Flush()
	if err := j.signals.Error(); err != nil {
		return err
	}
	return j.sf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 4, 64)
}
