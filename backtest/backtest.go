// Package backtest runs a bar history through the strategy engine in
// simulated mode and summarizes the outcome.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/signalbot/ledger"
	"github.com/rustyeddy/signalbot/market"
	"github.com/rustyeddy/signalbot/strategy"
	"github.com/shopspring/decimal"
)

// Options controls how the backtest behaves.
type Options struct {
	InitialCapital decimal.Decimal
	MinNotional    decimal.Decimal
	Lookback       int

	// CloseEnd closes an open position at the last close.
	CloseEnd bool
}

// Result is a summary of a backtest run.
type Result struct {
	Start time.Time
	End   time.Time
	Bars  int

	Trades int // completed round trips
	Wins   int
	Losses int

	StartCapital decimal.Decimal
	EndCapital   decimal.Decimal
	NetPnL       decimal.Decimal

	// OpenPosition is set when the run ended holding a position.
	OpenPosition *ledger.Position

	WinRate      float64 // percent
	ReturnPct    float64
	ProfitFactor float64
	MaxDDPct     float64

	Log []ledger.Trade
}

// Run feeds bars one at a time to a fresh simulated engine.
func Run(ctx context.Context, p strategy.Params, bars []market.Bar, opts Options) (Result, error) {
	if !opts.InitialCapital.IsPositive() {
		return Result{}, fmt.Errorf("%w: initial capital must be positive", strategy.ErrConfiguration)
	}
	if len(bars) == 0 {
		return Result{}, fmt.Errorf("%w: no bars", strategy.ErrDataUnavailable)
	}
	if opts.Lookback <= 0 {
		opts.Lookback = market.DefaultLookback
	}

	var clock time.Time
	l := ledger.New()
	eng, err := strategy.NewEngine(p, l,
		strategy.WithMode(strategy.Simulated),
		strategy.WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		return Result{}, err
	}

	dd := drawdown{}
	var last market.Bar

	// Windows before the indicator warm-up cannot produce an entry.
	start := min(p.Indicators.Warmup(), len(bars)) - 1
	for i := start; i < len(bars); i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		window := market.Tail(bars[:i+1], opts.Lookback)
		last = bars[i]
		clock = last.Time

		_, err := eng.RunCycle(ctx, strategy.CycleInput{
			Bars:        window,
			Capital:     opts.InitialCapital.Add(l.RealizedPnL()),
			MinNotional: opts.MinNotional,
		})
		if err != nil && strategy.IsFatal(err) {
			return Result{}, err
		}

		price := decimal.NewFromFloat(last.Close)
		dd.update(opts.InitialCapital.Add(l.RealizedPnL()).Add(l.UnrealizedPnL(price)))
	}

	if opts.CloseEnd && l.InPosition() {
		if _, err := l.RecordClose(decimal.NewFromFloat(last.Close), last.Time, "EndOfReplay"); err != nil {
			return Result{}, err
		}
	}

	r := summarize(l.Snapshot(), opts.InitialCapital)
	r.Start = bars[0].Time
	r.End = bars[len(bars)-1].Time
	r.Bars = len(bars)
	r.MaxDDPct = dd.maxPct
	return r, nil
}

func summarize(s ledger.Snapshot, initial decimal.Decimal) Result {
	r := Result{
		StartCapital: initial,
		NetPnL:       s.RealizedPnL,
		EndCapital:   initial.Add(s.RealizedPnL),
		OpenPosition: s.Position,
		Log:          s.Trades,
	}

	grossProfit, grossLoss := decimal.Zero, decimal.Zero
	for _, t := range s.Trades {
		if !t.RealizedPnL.Valid {
			continue
		}
		r.Trades++
		pnl := t.RealizedPnL.Decimal
		if pnl.IsPositive() {
			r.Wins++
			grossProfit = grossProfit.Add(pnl)
		} else {
			r.Losses++
			grossLoss = grossLoss.Add(pnl.Abs())
		}
	}

	if r.Trades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.Trades) * 100
	}
	if grossLoss.IsPositive() {
		r.ProfitFactor = grossProfit.Div(grossLoss).InexactFloat64()
	}
	r.ReturnPct = s.RealizedPnL.Div(initial).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return r
}

// drawdown tracks the largest peak-to-trough equity fall in percent.
type drawdown struct {
	peak   decimal.Decimal
	maxPct float64
}

func (d *drawdown) update(equity decimal.Decimal) {
	if equity.GreaterThan(d.peak) {
		d.peak = equity
		return
	}
	if !d.peak.IsPositive() {
		return
	}
	pct := d.peak.Sub(equity).Div(d.peak).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if pct > d.maxPct {
		d.maxPct = pct
	}
}
