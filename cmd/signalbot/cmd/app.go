package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/broker/binance"
	"github.com/rustyeddy/signalbot/broker/sim"
	"github.com/rustyeddy/signalbot/config"
	"github.com/rustyeddy/signalbot/feed"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/logging"
	"github.com/rustyeddy/signalbot/scheduler"
	"github.com/rustyeddy/signalbot/strategy"
)

// app is a fully wired bot.
type app struct {
	cfg     *config.Config
	engine  *strategy.Engine
	runner  *scheduler.Runner
	journal journal.Journal
}

func (a *app) Close() error {
	return a.journal.Close()
}

// exchange is the market side of the bot: where bars come from and where
// orders go.
type exchange struct {
	feed    scheduler.Feed
	gateway broker.Gateway
	info    broker.SymbolInfo
	client  *binance.Client
}

func newExchange(cfg *config.Config, creds config.Credentials) (*exchange, error) {
	ex := cfg.Exchange
	switch ex.Kind {
	case "paper":
		bars, err := feed.LoadBarsCSV(ex.BarsFile)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
		gw := sim.NewGateway(ex.Symbol)
		gw.SetMinNotional(cfg.MinNotional())
		return &exchange{
			feed:    feed.NewReplay(bars, ex.Lookback),
			gateway: gw,
			info:    gw,
		}, nil

	case "binance":
		client := binance.NewClient(ex.BaseURL, creds.APIKey, creds.APISecret)
		gw := &binance.Gateway{Client: client, Symbol: ex.Symbol}
		return &exchange{
			feed:    &binance.Feed{Client: client, Symbol: ex.Symbol, Interval: ex.Interval, Limit: ex.Lookback},
			gateway: gw,
			info:    gw,
			client:  client,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown exchange %q", strategy.ErrConfiguration, ex.Kind)
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

// checkRealMode refuses to start real trading unless the exchange accepts
// the credentials and the account can fund the initial capital.
func checkRealMode(ctx context.Context, cfg *config.Config, ex *exchange) error {
	if ex.client == nil {
		return nil
	}
	if !ex.client.HasCredentials() {
		return fmt.Errorf("%w: real mode needs %s and %s", strategy.ErrConfiguration, config.EnvAPIKey, config.EnvAPISecret)
	}
	if err := ex.client.Preflight(ctx, cfg.Exchange.Symbol, cfg.Exchange.QuoteAsset, cfg.InitialCapital()); err != nil {
		return fmt.Errorf("%w: %w", strategy.ErrConfiguration, err)
	}
	return nil
}

func newApp(ctx context.Context, cfg *config.Config, creds config.Credentials) (*app, error) {
	params, err := cfg.StrategyParams()
	if err != nil {
		return nil, err
	}
	poll, err := cfg.PollInterval()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GatewayTimeout()
	if err != nil {
		return nil, err
	}

	ex, err := newExchange(cfg, creds)
	if err != nil {
		return nil, err
	}
	if cfg.Trading.RealMode {
		if err := checkRealMode(ctx, cfg, ex); err != nil {
			return nil, err
		}
	}

	engine, err := strategy.NewEngine(params, nil,
		strategy.WithGateway(ex.gateway),
		strategy.WithMode(cfg.Mode()),
		strategy.WithGatewayTimeout(timeout),
		strategy.WithLogger(logging.For("strategy")),
	)
	if err != nil {
		return nil, err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	runner, err := scheduler.New(scheduler.Config{
		Symbol:         cfg.Exchange.Symbol,
		PollInterval:   poll,
		InitialCapital: cfg.InitialCapital(),
		MinNotional:    cfg.MinNotional(),
		Lookback:       cfg.Exchange.Lookback,
	}, engine, ex.feed,
		scheduler.WithSymbolInfo(ex.info),
		scheduler.WithJournal(j),
		scheduler.WithLogger(logging.For("scheduler")),
	)
	if err != nil {
		j.Close()
		return nil, err
	}

	return &app{cfg: cfg, engine: engine, runner: runner, journal: j}, nil
}
