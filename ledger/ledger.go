// Package ledger holds the single open position, the running realized PnL and
// the append-only trade log of one trading session.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/signalbot/id"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidState is returned when a close is requested with no open
	// position.
	ErrInvalidState = errors.New("ledger: no open position")

	// ErrPositionOpen is returned when an open is requested while a position
	// is already held. At most one position exists at a time.
	ErrPositionOpen = errors.New("ledger: position already open")

	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
	ErrInvalidPrice    = errors.New("ledger: price must be positive")
)

// Ledger is owned by a single strategy engine and is not safe for concurrent
// use. Readers should take a Snapshot between cycles.
type Ledger struct {
	position *Position
	realized decimal.Decimal
	trades   []Trade
}

// New returns an empty (flat) ledger.
func New() *Ledger {
	return &Ledger{}
}

// RecordOpen opens a position and appends a BUY trade.
func (l *Ledger) RecordOpen(price, qty decimal.Decimal, at time.Time, reason string) (Trade, error) {
	if l.position != nil {
		return Trade{}, ErrPositionOpen
	}
	if !qty.IsPositive() {
		return Trade{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, qty)
	}
	if !price.IsPositive() {
		return Trade{}, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	l.position = &Position{
		EntryPrice: price,
		Quantity:   qty,
		OpenedAt:   at,
	}

	t := Trade{
		ID:       id.At(at),
		Time:     at,
		Side:     Buy,
		Price:    price,
		Quantity: qty,
		Reason:   reason,
	}
	l.trades = append(l.trades, t)
	return t, nil
}

// RecordClose closes the whole position at price and appends a SELL trade
// carrying the realized PnL, (price - entry) * quantity.
func (l *Ledger) RecordClose(price decimal.Decimal, at time.Time, reason string) (Trade, error) {
	if l.position == nil {
		return Trade{}, ErrInvalidState
	}
	if !price.IsPositive() {
		return Trade{}, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	pos := *l.position
	pnl := pos.UnrealizedPnL(price)
	l.realized = l.realized.Add(pnl)
	l.position = nil

	t := Trade{
		ID:          id.At(at),
		Time:        at,
		Side:        Sell,
		Price:       price,
		Quantity:    pos.Quantity,
		RealizedPnL: decimal.NewNullDecimal(pnl),
		Reason:      reason,
	}
	l.trades = append(l.trades, t)
	return t, nil
}

// Position returns the open position, if any.
func (l *Ledger) Position() (Position, bool) {
	if l.position == nil {
		return Position{}, false
	}
	return *l.position, true
}

func (l *Ledger) InPosition() bool {
	return l.position != nil
}

// UnrealizedPnL returns the paper PnL of the open position at price, or zero
// when flat.
func (l *Ledger) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if l.position == nil {
		return decimal.Zero
	}
	return l.position.UnrealizedPnL(price)
}

// RealizedPnL is the sum of the PnL of every SELL trade.
func (l *Ledger) RealizedPnL() decimal.Decimal {
	return l.realized
}

// Trades returns a copy of the trade log in chronological order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Len returns the number of trades recorded.
func (l *Ledger) Len() int {
	return len(l.trades)
}

// Snapshot is a stable copy of the ledger state for display and export.
type Snapshot struct {
	Position    *Position       `json:"position"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Trades      []Trade         `json:"trades"`
}

func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		RealizedPnL: l.realized,
		Trades:      l.Trades(),
	}
	if l.position != nil {
		p := *l.position
		s.Position = &p
	}
	return s
}

// SumRealized recomputes the realized PnL from a trade log.
func SumRealized(trades []Trade) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range trades {
		if t.RealizedPnL.Valid {
			sum = sum.Add(t.RealizedPnL.Decimal)
		}
	}
	return sum
}
