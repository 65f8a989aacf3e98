package journal

import (
	"database/sql"
	"fmt"
	"time"
)

const signalColumns = `id, symbol, region, strategy, signal, trend, price, stop, note, recorded_at`

func scanSignal(scan func(...any) error) (SignalRecord, error) {
	var rec SignalRecord
	err := scan(
		&rec.ID,
		&rec.Symbol,
		&rec.Region,
		&rec.Strategy,
		&rec.Signal,
		&rec.Trend,
		&rec.Price,
		&rec.Stop,
		&rec.Note,
		&rec.RecordedAt,
	)
	return rec, err
}

// GetSignal returns a single signal record by ID.
func (j *SQLite) GetSignal(id string) (SignalRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE id = ?`, id)

	rec, err := scanSignal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return SignalRecord{}, fmt.Errorf("signal %q not found", id)
		}
		return SignalRecord{}, err
	}
	return rec, nil
}

// ListSignalsBetween returns signals recorded within [start, end), ascending.
func (j *SQLite) ListSignalsBetween(start, end time.Time) ([]SignalRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		rec, err := scanSignal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestBySymbol returns the most recent signal for the symbol.
func (j *SQLite) LatestBySymbol(symbol string) (SignalRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE symbol = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`, symbol)

	rec, err := scanSignal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return SignalRecord{}, fmt.Errorf("no signals for %q", symbol)
		}
		return SignalRecord{}, err
	}
	return rec, nil
}
