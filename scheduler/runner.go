// Package scheduler polls the market feed at a fixed interval and runs one
// strategy cycle per poll.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/feed"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/market"
	"github.com/rustyeddy/signalbot/strategy"
	"github.com/shopspring/decimal"
)

// Feed returns the most recent bars, oldest first.
type Feed interface {
	Bars(ctx context.Context) ([]market.Bar, error)
}

type Config struct {
	Symbol         string
	PollInterval   time.Duration
	InitialCapital decimal.Decimal

	// MinNotional is used when no SymbolInfo is set or it fails.
	MinNotional decimal.Decimal

	// Lookback caps the window handed to the engine.
	Lookback int
}

// Runner owns the engine between cycles. Cycles run one at a time on the
// goroutine calling Run; Status may be called from any goroutine.
type Runner struct {
	cfg     Config
	engine  *strategy.Engine
	feed    Feed
	info    broker.SymbolInfo
	journal journal.Journal
	log     *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	status Status
}

type Option func(*Runner)

// WithSymbolInfo queries info for the minimum order value on every cycle.
func WithSymbolInfo(info broker.SymbolInfo) Option {
	return func(r *Runner) { r.info = info }
}

func WithJournal(j journal.Journal) Option {
	return func(r *Runner) { r.journal = j }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func New(cfg Config, eng *strategy.Engine, f Feed, opts ...Option) (*Runner, error) {
	if eng == nil || f == nil {
		return nil, fmt.Errorf("%w: scheduler needs an engine and a feed", strategy.ErrConfiguration)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("%w: poll interval must be positive", strategy.ErrConfiguration)
	}
	if !cfg.InitialCapital.IsPositive() {
		return nil, fmt.Errorf("%w: initial capital must be positive", strategy.ErrConfiguration)
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = market.DefaultLookback
	}
	if !cfg.MinNotional.IsPositive() {
		cfg.MinNotional = broker.DefaultMinNotional
	}

	r := &Runner{
		cfg:     cfg,
		engine:  eng,
		feed:    f,
		journal: journal.Nop{},
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.status = Status{
		Symbol:  cfg.Symbol,
		Mode:    eng.Mode().String(),
		Capital: cfg.InitialCapital,
	}
	return r, nil
}

// Status returns a copy of the last published state.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.copy()
}

// Capital is the initial capital plus every realized PnL so far. Losses
// shrink the next entry and gains compound into it.
func (r *Runner) Capital() decimal.Decimal {
	return r.cfg.InitialCapital.Add(r.engine.RealizedPnL())
}

// Run executes a cycle immediately and then one per poll interval until ctx
// is done, the feed is exhausted or a cycle fails fatally. A slow cycle
// delays the next one; cycles never overlap.
func (r *Runner) Run(ctx context.Context) error {
	r.setRunning(true)
	defer r.setRunning(false)

	r.log.Info("scheduler started",
		"symbol", r.cfg.Symbol,
		"mode", r.engine.Mode(),
		"interval", r.cfg.PollInterval,
		"capital", r.cfg.InitialCapital)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		_, err := r.Cycle(ctx)
		switch {
		case err == nil:
		case errors.Is(err, feed.ErrExhausted):
			r.log.Info("feed exhausted, stopping")
			return nil
		case strategy.IsFatal(err):
			r.log.Error("fatal cycle error, stopping", "err", err)
			return err
		case ctx.Err() != nil:
			return nil
		default:
			r.log.Warn("cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			r.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle fetches bars and runs one engine cycle.
func (r *Runner) Cycle(ctx context.Context) (strategy.Delta, error) {
	bars, err := r.feed.Bars(ctx)
	if err != nil {
		if errors.Is(err, feed.ErrExhausted) || ctx.Err() != nil {
			return strategy.Delta{}, err
		}
		err = fmt.Errorf("%w: fetch bars: %w", strategy.ErrDataUnavailable, err)
		r.publish(strategy.Delta{}, err)
		return strategy.Delta{}, err
	}

	bars = market.Tail(bars, r.cfg.Lookback)
	if !market.Chronological(bars) {
		err := fmt.Errorf("%w: bars are not in chronological order", strategy.ErrDataUnavailable)
		r.publish(strategy.Delta{}, err)
		return strategy.Delta{}, err
	}

	delta, err := r.engine.RunCycle(ctx, strategy.CycleInput{
		Bars:        bars,
		Capital:     r.Capital(),
		MinNotional: r.minNotional(ctx),
	})

	if delta.Trade != nil {
		rec := journal.Record{Symbol: r.cfg.Symbol, Mode: r.engine.Mode().String(), Trade: *delta.Trade}
		if jerr := r.journal.RecordTrade(rec); jerr != nil {
			r.log.Warn("journal trade failed", "trade", delta.Trade.ID, "err", jerr)
		}
	}
	if delta.Signal.Price.IsPositive() {
		r.recordEquity(delta)
	}

	r.publish(delta, err)
	return delta, err
}

func (r *Runner) minNotional(ctx context.Context) decimal.Decimal {
	if r.info == nil {
		return r.cfg.MinNotional
	}
	mn, err := broker.MinNotionalOrDefault(ctx, r.info)
	if err != nil {
		r.log.Warn("min notional unavailable, using fallback", "fallback", r.cfg.MinNotional, "err", err)
		return r.cfg.MinNotional
	}
	return mn
}

func (r *Runner) recordEquity(delta strategy.Delta) {
	snap := r.engine.Snapshot()
	e := journal.EquitySnapshot{
		Time:       delta.Signal.Time,
		Symbol:     r.cfg.Symbol,
		Price:      delta.Signal.Price,
		Position:   decimal.Zero,
		Realized:   snap.RealizedPnL,
		Unrealized: r.engine.UnrealizedPnL(delta.Signal.Price),
	}
	if snap.Position != nil {
		e.Position = snap.Position.Quantity
	}
	if err := r.journal.RecordEquity(e); err != nil {
		r.log.Warn("journal equity failed", "err", err)
	}
}

func (r *Runner) publish(delta strategy.Delta, err error) {
	snap := r.engine.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	s := &r.status
	s.Cycles++
	s.LastCycle = r.now()
	s.Capital = r.Capital()
	s.Position = snap.Position
	s.RealizedPnL = snap.RealizedPnL
	s.Trades = snap.Trades
	s.LastError = ""
	if err != nil {
		s.LastError = err.Error()
	}

	if delta.Signal.Price.IsPositive() {
		s.Price = delta.Signal.Price
		s.RSI = defined(delta.Signal.RSI)
		s.MACD = defined(delta.Signal.MACD)
		s.MACDSignal = defined(delta.Signal.MACDSignal)
		s.LastAction = delta.Decision.Action.String()
		s.LastReason = string(delta.Decision.Reason)
	}
	s.UnrealizedPnL = decimal.Zero
	if snap.Position != nil && s.Price.IsPositive() {
		s.UnrealizedPnL = snap.Position.UnrealizedPnL(s.Price)
	}
}

func (r *Runner) setRunning(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Running = v
}
