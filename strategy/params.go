package strategy

import (
	"fmt"

	"github.com/rustyeddy/signalbot/indicators"
	"github.com/shopspring/decimal"
)

// Params holds the thresholds of the RSI/MACD entry and the stop-loss and
// take-profit exits. Percentages are whole numbers (15 means 15%).
type Params struct {
	Indicators indicators.Params

	// RSIOversold is the RSI level below which an entry is allowed.
	RSIOversold float64

	// StopLossPct closes the position when the unrealized move is at or below
	// -StopLossPct.
	StopLossPct decimal.Decimal

	// TakeProfitPct and ExtendedTakeProfitPct bound the two take-profit
	// tiers. Both require a bearish MACD cross.
	TakeProfitPct         decimal.Decimal
	ExtendedTakeProfitPct decimal.Decimal

	// QuantityPrecision is the number of fractional digits kept on order
	// quantities.
	QuantityPrecision int32
}

func DefaultParams() Params {
	return Params{
		Indicators:            indicators.DefaultParams(),
		RSIOversold:           30,
		StopLossPct:           decimal.NewFromInt(15),
		TakeProfitPct:         decimal.NewFromInt(20),
		ExtendedTakeProfitPct: decimal.NewFromInt(30),
		QuantityPrecision:     6,
	}
}

func (p Params) Validate() error {
	if err := p.Indicators.Validate(); err != nil {
		return err
	}
	if p.RSIOversold <= 0 || p.RSIOversold >= 100 {
		return fmt.Errorf("rsi oversold must be in (0, 100), got %v", p.RSIOversold)
	}
	if !p.StopLossPct.IsPositive() {
		return fmt.Errorf("stop loss pct must be positive, got %s", p.StopLossPct)
	}
	if !p.TakeProfitPct.IsPositive() {
		return fmt.Errorf("take profit pct must be positive, got %s", p.TakeProfitPct)
	}
	if p.ExtendedTakeProfitPct.LessThan(p.TakeProfitPct) {
		return fmt.Errorf("extended take profit pct %s is below take profit pct %s", p.ExtendedTakeProfitPct, p.TakeProfitPct)
	}
	if p.QuantityPrecision < 0 || p.QuantityPrecision > 18 {
		return fmt.Errorf("quantity precision must be in 0..18, got %d", p.QuantityPrecision)
	}
	return nil
}

// RoundQuantity truncates q to the configured precision. Truncating never
// spends more than the capital the quantity was derived from.
func (p Params) RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Truncate(p.QuantityPrecision)
}
