// journal/journal.go
package journal

import (
	"time"
)

// SignalRecord is one emitted signal for one symbol: what the engine said,
// at what price, and where the stop sat at the time.
type SignalRecord struct {
	ID         string
	Symbol     string
	Region     string
	Strategy   string
	Signal     string
	Trend      string
	Price      float64
	Stop       float64
	Note       string
	RecordedAt time.Time
}

type Journal interface {
	RecordSignal(SignalRecord) error
	Close() error
}
