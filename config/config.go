// Package config loads the bot configuration from YAML or JSON files and the
// exchange credentials from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/signalbot/indicators"
	"github.com/rustyeddy/signalbot/market"
	"github.com/rustyeddy/signalbot/strategy"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
)

// Config represents the complete bot configuration.
type Config struct {
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// ExchangeConfig selects where bars come from and where orders go.
type ExchangeConfig struct {
	Kind       string `json:"kind" yaml:"kind"` // "binance" or "paper"
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Symbol     string `json:"symbol" yaml:"symbol"`
	QuoteAsset string `json:"quote_asset" yaml:"quote_asset"`
	Interval   string `json:"interval" yaml:"interval"`
	Lookback   int    `json:"lookback" yaml:"lookback"`

	// BarsFile is the CSV bar history replayed by the paper exchange.
	BarsFile string `json:"bars_file,omitempty" yaml:"bars_file,omitempty"`
}

// StrategyConfig holds the indicator periods and the entry/exit thresholds.
// Percentages are whole numbers.
type StrategyConfig struct {
	RSIPeriod             int     `json:"rsi_period" yaml:"rsi_period"`
	MACDFast              int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow              int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal            int     `json:"macd_signal" yaml:"macd_signal"`
	RSIOversold           float64 `json:"rsi_oversold" yaml:"rsi_oversold"`
	StopLossPct           float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct         float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	ExtendedTakeProfitPct float64 `json:"extended_take_profit_pct" yaml:"extended_take_profit_pct"`
	QuantityPrecision     int32   `json:"quantity_precision" yaml:"quantity_precision"`
}

// TradingConfig contains session parameters.
type TradingConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	RealMode       bool    `json:"real_mode" yaml:"real_mode"`
	PollInterval   string  `json:"poll_interval" yaml:"poll_interval"`     // e.g. "60s"
	GatewayTimeout string  `json:"gateway_timeout" yaml:"gateway_timeout"` // e.g. "10s"

	// MinNotional is used when the exchange does not report one.
	MinNotional float64 `json:"min_notional" yaml:"min_notional"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig controls the read-only HTTP API.
type ServerConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Credentials authenticate against the exchange. They are never stored in
// the config file.
type Credentials struct {
	APIKey    string
	APISecret string
}

func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// LoadCredentials reads the exchange credentials from the environment after
// loading the given .env files. Missing .env files are ignored and variables
// already set in the environment win.
func LoadCredentials(envFiles ...string) (Credentials, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Credentials{
		APIKey:    os.Getenv(EnvAPIKey),
		APISecret: os.Getenv(EnvAPISecret),
	}, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Fields missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON
// otherwise).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Exchange.Kind {
	case "binance":
	case "paper":
		if c.Exchange.BarsFile == "" {
			return fmt.Errorf("exchange.bars_file is required for the paper exchange")
		}
	default:
		return fmt.Errorf("exchange.kind must be 'binance' or 'paper'")
	}
	if c.Exchange.Symbol == "" {
		return fmt.Errorf("exchange.symbol is required")
	}
	if c.Exchange.QuoteAsset == "" {
		return fmt.Errorf("exchange.quote_asset is required")
	}
	if _, err := market.ParseInterval(c.Exchange.Interval); err != nil {
		return fmt.Errorf("exchange.interval: %w", err)
	}
	if c.Exchange.Lookback <= 0 {
		return fmt.Errorf("exchange.lookback must be positive")
	}

	p, err := c.StrategyParams()
	if err != nil {
		return err
	}
	if w := p.Indicators.Warmup(); c.Exchange.Lookback < w {
		return fmt.Errorf("exchange.lookback %d is below the indicator warm-up of %d bars", c.Exchange.Lookback, w)
	}

	if c.Trading.InitialCapital <= 0 {
		return fmt.Errorf("trading.initial_capital must be positive")
	}
	if c.Trading.MinNotional < 0 {
		return fmt.Errorf("trading.min_notional must not be negative")
	}
	if d, err := c.PollInterval(); err != nil || d <= 0 {
		return fmt.Errorf("trading.poll_interval must be a positive duration")
	}
	if d, err := c.GatewayTimeout(); err != nil || d <= 0 {
		return fmt.Errorf("trading.gateway_timeout must be a positive duration")
	}

	switch c.Journal.Type {
	case "none", "":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required when the server is enabled")
	}
	return nil
}

// StrategyParams converts the strategy section.
func (c *Config) StrategyParams() (strategy.Params, error) {
	s := c.Strategy
	p := strategy.Params{
		Indicators: indicators.Params{
			RSIPeriod:  s.RSIPeriod,
			MACDFast:   s.MACDFast,
			MACDSlow:   s.MACDSlow,
			MACDSignal: s.MACDSignal,
		},
		RSIOversold:           s.RSIOversold,
		StopLossPct:           decimal.NewFromFloat(s.StopLossPct),
		TakeProfitPct:         decimal.NewFromFloat(s.TakeProfitPct),
		ExtendedTakeProfitPct: decimal.NewFromFloat(s.ExtendedTakeProfitPct),
		QuantityPrecision:     s.QuantityPrecision,
	}
	if err := p.Validate(); err != nil {
		return strategy.Params{}, fmt.Errorf("strategy: %w", err)
	}
	return p, nil
}

func (c *Config) InitialCapital() decimal.Decimal {
	return decimal.NewFromFloat(c.Trading.InitialCapital)
}

func (c *Config) MinNotional() decimal.Decimal {
	return decimal.NewFromFloat(c.Trading.MinNotional)
}

func (c *Config) PollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Trading.PollInterval)
}

func (c *Config) GatewayTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Trading.GatewayTimeout)
}

// Mode is the engine mode selected by trading.real_mode.
func (c *Config) Mode() strategy.Mode {
	if c.Trading.RealMode {
		return strategy.Real
	}
	return strategy.Simulated
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Kind:       "binance",
			Symbol:     "BTCUSDT",
			QuoteAsset: "USDT",
			Interval:   "1h",
			Lookback:   market.DefaultLookback,
		},
		Strategy: StrategyConfig{
			RSIPeriod:             14,
			MACDFast:              12,
			MACDSlow:              26,
			MACDSignal:            9,
			RSIOversold:           30,
			StopLossPct:           15,
			TakeProfitPct:         20,
			ExtendedTakeProfitPct: 30,
			QuantityPrecision:     6,
		},
		Trading: TradingConfig{
			InitialCapital: 100,
			PollInterval:   "60s",
			GatewayTimeout: "10s",
			MinNotional:    1.0,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
