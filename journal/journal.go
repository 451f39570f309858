// Package journal persists the trade log and per-cycle equity outside the
// process, as CSV files or a SQLite database.
package journal

import (
	"time"

	"github.com/rustyeddy/signalbot/ledger"
	"github.com/shopspring/decimal"
)

// Record is a ledger trade tagged with where it was made.
type Record struct {
	Symbol string `json:"symbol"`
	Mode   string `json:"mode"`
	ledger.Trade
}

// EquitySnapshot is the account value after one cycle.
type EquitySnapshot struct {
	Time       time.Time       `json:"time"`
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Position   decimal.Decimal `json:"position_qty"`
	Realized   decimal.Decimal `json:"realized_pnl"`
	Unrealized decimal.Decimal `json:"unrealized_pnl"`
}

// Equity is the realized plus the unrealized PnL.
func (e EquitySnapshot) Equity() decimal.Decimal {
	return e.Realized.Add(e.Unrealized)
}

type Journal interface {
	RecordTrade(Record) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(Record) error          { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
