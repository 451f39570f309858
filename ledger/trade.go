package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Position is the single open holding.
type Position struct {
	EntryPrice decimal.Decimal `json:"entry_price"`
	Quantity   decimal.Decimal `json:"quantity"`
	OpenedAt   time.Time       `json:"opened_at"`
}

// Notional is the entry value of the position.
func (p Position) Notional() decimal.Decimal {
	return p.EntryPrice.Mul(p.Quantity)
}

// UnrealizedPnL is (price - entry) * quantity.
func (p Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(p.EntryPrice).Mul(p.Quantity)
}

// UnrealizedPct is (price - entry) / entry * 100.
func (p Position) UnrealizedPct(price decimal.Decimal) decimal.Decimal {
	if p.EntryPrice.IsZero() {
		return decimal.Zero
	}
	return price.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(decimal.NewFromInt(100))
}

// Trade is one entry of the trade log. Trades are never modified after they
// are appended; RealizedPnL is only valid for SELL trades.
type Trade struct {
	ID          string              `json:"id"`
	Time        time.Time           `json:"time"`
	Side        Side                `json:"action"`
	Price       decimal.Decimal     `json:"price"`
	Quantity    decimal.Decimal     `json:"qty"`
	RealizedPnL decimal.NullDecimal `json:"pnl"`
	Reason      string              `json:"reason,omitempty"`
}

func (t Trade) String() string {
	s := fmt.Sprintf("%s %s %s @ %s", t.Time.UTC().Format(time.RFC3339), t.Side, t.Quantity, t.Price)
	if t.RealizedPnL.Valid {
		s += " pnl=" + t.RealizedPnL.Decimal.StringFixed(2)
	}
	return s
}
