package journal

// Schema stores decimals as TEXT so prices and quantities round-trip
// exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	mode TEXT NOT NULL,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	price TEXT NOT NULL,
	qty TEXT NOT NULL,
	pnl TEXT,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	price TEXT NOT NULL,
	position_qty TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	unrealized_pnl TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
