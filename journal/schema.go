// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS signals (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	region TEXT NOT NULL,
	strategy TEXT NOT NULL,
	signal TEXT NOT NULL,
	trend TEXT NOT NULL,
	price REAL NOT NULL,
	stop REAL NOT NULL,
	note TEXT NOT NULL,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_recorded_at ON signals(recorded_at);
CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol);
`
