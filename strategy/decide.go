package strategy

import (
	"time"

	"github.com/rustyeddy/signalbot/indicators"
	"github.com/rustyeddy/signalbot/ledger"
	"github.com/shopspring/decimal"
)

type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Reason explains a decision. It is recorded on trades and in logs.
type Reason string

const (
	ReasonStopLoss           Reason = "StopLoss"
	ReasonTakeProfit         Reason = "TakeProfit"
	ReasonExtendedTakeProfit Reason = "ExtendedTakeProfit"
	ReasonEntry              Reason = "RSIOversoldMACDCross"
	ReasonNoSignal           Reason = "NoSignal"
	ReasonBelowMinNotional   Reason = "BelowMinNotional"
	ReasonWarmup             Reason = "Warmup"
)

// Signal is the latest bar's close and its indicator values.
type Signal struct {
	Time  time.Time
	Price decimal.Decimal
	indicators.Snapshot
}

func (s Signal) bearishCross() bool {
	return s.MACD < s.MACDSignal
}

func (s Signal) bullishCross() bool {
	return s.MACD > s.MACDSignal
}

// Decision is the outcome of evaluating one bar.
type Decision struct {
	Action   Action
	Reason   Reason
	Price    decimal.Decimal
	Quantity decimal.Decimal

	// UnrealizedPct is set while a position is held.
	UnrealizedPct decimal.Decimal
}

// Decide evaluates the rules for one bar. pos is nil when flat. It has no side
// effects.
//
// While holding, the first matching rule wins: stop loss, take profit, extended
// take profit, otherwise hold. While flat, a buy of capital/price (rounded) is
// considered when its value reaches minNotional, and taken on an oversold RSI
// with a bullish MACD cross.
func Decide(p Params, sig Signal, pos *ledger.Position, capital, minNotional decimal.Decimal) Decision {
	if pos != nil {
		return decideExit(p, sig, *pos)
	}
	return decideEntry(p, sig, capital, minNotional)
}

func decideExit(p Params, sig Signal, pos ledger.Position) Decision {
	pct := pos.UnrealizedPct(sig.Price)
	d := Decision{
		Action:        Hold,
		Reason:        ReasonNoSignal,
		Price:         sig.Price,
		Quantity:      pos.Quantity,
		UnrealizedPct: pct,
	}

	switch {
	case pct.LessThanOrEqual(p.StopLossPct.Neg()):
		d.Action, d.Reason = Sell, ReasonStopLoss
	case pct.GreaterThanOrEqual(p.TakeProfitPct) && pct.LessThan(p.ExtendedTakeProfitPct) && sig.bearishCross():
		d.Action, d.Reason = Sell, ReasonTakeProfit
	case pct.GreaterThanOrEqual(p.ExtendedTakeProfitPct) && sig.bearishCross():
		d.Action, d.Reason = Sell, ReasonExtendedTakeProfit
	}
	return d
}

func decideEntry(p Params, sig Signal, capital, minNotional decimal.Decimal) Decision {
	d := Decision{
		Action: Hold,
		Reason: ReasonNoSignal,
		Price:  sig.Price,
	}
	if !sig.Price.IsPositive() || !capital.IsPositive() {
		return d
	}

	d.Quantity = p.RoundQuantity(capital.Div(sig.Price))
	if d.Quantity.Mul(sig.Price).LessThan(minNotional) {
		d.Reason = ReasonBelowMinNotional
		return d
	}

	if sig.RSI < p.RSIOversold && sig.bullishCross() {
		d.Action, d.Reason = Buy, ReasonEntry
	}
	return d
}
