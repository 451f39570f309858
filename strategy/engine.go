// Package strategy decides when to enter and leave a single long position
// from RSI and MACD, and drives the ledger and the execution gateway.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/indicators"
	"github.com/rustyeddy/signalbot/ledger"
	"github.com/rustyeddy/signalbot/market"
	"github.com/shopspring/decimal"
)

// Mode selects whether decisions are sent to the exchange.
type Mode int

const (
	// Simulated updates the ledger only.
	Simulated Mode = iota
	// Real also submits every decision through the gateway.
	Real
)

func (m Mode) String() string {
	if m == Real {
		return "real"
	}
	return "simulated"
}

// DefaultGatewayTimeout bounds a single order submission.
const DefaultGatewayTimeout = 10 * time.Second

// Engine runs decision cycles against a ledger it exclusively owns. Cycles
// must not overlap; the engine is not safe for concurrent use.
type Engine struct {
	params  Params
	ledger  *ledger.Ledger
	gateway broker.Gateway
	mode    Mode
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Engine)

func WithGateway(gw broker.Gateway) Option {
	return func(e *Engine) { e.gateway = gw }
}

func WithMode(m Mode) Option {
	return func(e *Engine) { e.mode = m }
}

func WithGatewayTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the clock used to timestamp trades.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine driving l. A nil ledger starts a new session.
func NewEngine(p Params, l *ledger.Ledger, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if l == nil {
		l = ledger.New()
	}

	e := &Engine{
		params:  p,
		ledger:  l,
		timeout: DefaultGatewayTimeout,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.mode == Real && e.gateway == nil {
		return nil, fmt.Errorf("%w: real mode requires a gateway", ErrConfiguration)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultGatewayTimeout
	}
	return e, nil
}

func (e *Engine) Mode() Mode     { return e.mode }
func (e *Engine) Params() Params { return e.params }

// Snapshot returns a copy of the ledger state. Call it between cycles.
func (e *Engine) Snapshot() ledger.Snapshot {
	return e.ledger.Snapshot()
}

func (e *Engine) RealizedPnL() decimal.Decimal {
	return e.ledger.RealizedPnL()
}

func (e *Engine) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return e.ledger.UnrealizedPnL(price)
}

// CycleInput is everything one decision cycle consumes.
type CycleInput struct {
	// Bars is the chronological lookback window; the last bar is current.
	Bars []market.Bar

	// Capital is the quote-currency amount available for an entry.
	Capital decimal.Decimal

	// MinNotional is the exchange's minimum order value. Zero means
	// broker.DefaultMinNotional.
	MinNotional decimal.Decimal
}

// Delta describes what one cycle changed.
type Delta struct {
	Signal   Signal
	Decision Decision

	// Trade is the ledger entry appended by the cycle, nil on hold.
	Trade *ledger.Trade

	// OrderID is set when an order was accepted by the gateway.
	OrderID broker.OrderID
}

// Committed reports whether the cycle changed the ledger.
func (d Delta) Committed() bool {
	return d.Trade != nil
}

// RunCycle evaluates the latest bar and applies the decision.
//
// The ledger is updated before the order is submitted and is not rolled back
// when submission fails: a gateway error is returned wrapped in
// ErrGatewayFailure next to a committed Delta. In real trading this can leave
// the ledger out of sync with the exchange, so callers must surface those
// errors to the operator.
func (e *Engine) RunCycle(ctx context.Context, in CycleInput) (Delta, error) {
	sig, snapErr := e.signal(in.Bars)
	delta := Delta{
		Signal:   sig,
		Decision: Decision{Action: Hold, Reason: ReasonWarmup, Price: sig.Price},
	}
	if !sig.Price.IsPositive() {
		return delta, fmt.Errorf("%w: no usable close price", ErrDataUnavailable)
	}

	pos, inPosition := e.ledger.Position()
	var posp *ledger.Position
	if inPosition {
		posp = &pos
	}

	minNotional := in.MinNotional
	if !minNotional.IsPositive() {
		minNotional = broker.DefaultMinNotional
	}

	if !inPosition {
		if snapErr != nil {
			return delta, snapErr
		}
		if !in.Capital.IsPositive() {
			return delta, fmt.Errorf("%w: capital must be positive, got %s", ErrConfiguration, in.Capital)
		}
		if in.Capital.LessThan(minNotional) {
			delta.Decision.Reason = ReasonBelowMinNotional
			return delta, fmt.Errorf("%w: capital %s is below min notional %s", ErrConfiguration, in.Capital, minNotional)
		}
	}

	// Without indicators only the stop loss can fire; the take-profit rules
	// compare against NaN and never match.
	delta.Decision = Decide(e.params, sig, posp, in.Capital, minNotional)
	d := delta.Decision

	e.log.Debug("decision",
		"action", d.Action,
		"reason", d.Reason,
		"price", d.Price,
		"rsi", sig.RSI,
		"macd", sig.MACD,
		"macd_signal", sig.MACDSignal,
		"unrealized_pct", d.UnrealizedPct)

	if d.Action == Hold {
		return delta, snapErr
	}

	trade, err := e.commit(d)
	if err != nil {
		return delta, err
	}
	delta.Trade = &trade

	e.log.Info("trade",
		"action", d.Action,
		"reason", d.Reason,
		"price", trade.Price,
		"qty", trade.Quantity,
		"pnl", trade.RealizedPnL,
		"mode", e.mode)

	if e.mode != Real {
		return delta, nil
	}

	oid, err := e.submit(ctx, d.Action, trade.Quantity)
	if err != nil {
		e.log.Warn("order failed, ledger already updated",
			"action", d.Action, "qty", trade.Quantity, "err", err)
		return delta, err
	}
	delta.OrderID = oid
	e.log.Info("order placed", "action", d.Action, "qty", trade.Quantity, "order_id", oid)
	return delta, nil
}

// signal extracts the latest price and indicator values. The returned error
// is ErrDataUnavailable when indicators are not defined yet.
func (e *Engine) signal(bars []market.Bar) (Signal, error) {
	last, ok := market.Last(bars)
	if !ok {
		return Signal{}, fmt.Errorf("%w: no bars", ErrDataUnavailable)
	}

	sig := Signal{Time: last.Time}
	if last.Close > 0 && !math.IsNaN(last.Close) && !math.IsInf(last.Close, 0) {
		sig.Price = decimal.NewFromFloat(last.Close)
	}

	nan := math.NaN()
	sig.Snapshot = indicators.Snapshot{RSI: nan, MACD: nan, MACDSignal: nan}

	snaps, err := indicators.Compute(market.Closes(bars), e.params.Indicators)
	if err != nil {
		return sig, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	sig.Snapshot = snaps[len(snaps)-1]
	if !sig.Defined() {
		return sig, fmt.Errorf("%w: indicators need %d bars, have %d",
			ErrDataUnavailable, e.params.Indicators.Warmup(), len(bars))
	}
	return sig, nil
}

func (e *Engine) commit(d Decision) (ledger.Trade, error) {
	at := e.now()
	switch d.Action {
	case Buy:
		return e.ledger.RecordOpen(d.Price, d.Quantity, at, string(d.Reason))
	case Sell:
		return e.ledger.RecordClose(d.Price, at, string(d.Reason))
	default:
		return ledger.Trade{}, fmt.Errorf("commit: unexpected action %s", d.Action)
	}
}

func (e *Engine) submit(ctx context.Context, a Action, qty decimal.Decimal) (broker.OrderID, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	side := broker.Buy
	if a == Sell {
		side = broker.Sell
	}
	oid, err := broker.Place(ctx, e.gateway, side, qty)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %w", ErrGatewayFailure, side, qty, err)
	}
	return oid, nil
}
