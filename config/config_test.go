package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/signalbot/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, "BTCUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, 150, cfg.Exchange.Lookback)
	assert.Equal(t, strategy.Simulated, cfg.Mode())
	assert.NoError(t, cfg.Validate())

	p, err := cfg.StrategyParams()
	require.NoError(t, err)
	assert.Equal(t, strategy.DefaultParams().Indicators, p.Indicators)
	assert.True(t, strategy.DefaultParams().StopLossPct.Equal(p.StopLossPct))
	assert.True(t, strategy.DefaultParams().TakeProfitPct.Equal(p.TakeProfitPct))
	assert.True(t, strategy.DefaultParams().ExtendedTakeProfitPct.Equal(p.ExtendedTakeProfitPct))

	poll, err := cfg.PollInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, poll)
	assert.Equal(t, "1", cfg.MinNotional().String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"unknown exchange", func(c *Config) { c.Exchange.Kind = "kraken" }, "exchange.kind"},
		{"paper needs bars file", func(c *Config) { c.Exchange.Kind = "paper" }, "exchange.bars_file"},
		{"missing symbol", func(c *Config) { c.Exchange.Symbol = "" }, "exchange.symbol is required"},
		{"bad interval", func(c *Config) { c.Exchange.Interval = "7m" }, "exchange.interval"},
		{"lookback below warm-up", func(c *Config) { c.Exchange.Lookback = 20 }, "warm-up"},
		{"bad macd periods", func(c *Config) { c.Strategy.MACDFast = 40 }, "strategy"},
		{"zero capital", func(c *Config) { c.Trading.InitialCapital = 0 }, "trading.initial_capital"},
		{"bad poll interval", func(c *Config) { c.Trading.PollInterval = "soon" }, "trading.poll_interval"},
		{"bad gateway timeout", func(c *Config) { c.Trading.GatewayTimeout = "-1s" }, "trading.gateway_timeout"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "postgres" }, "journal.type"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path"},
		{"server without addr", func(c *Config) { c.Server.Enabled = true; c.Server.Addr = "" }, "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signalbot.yaml")

	cfg := Default()
	cfg.Exchange.Symbol = "ETHUSDT"
	cfg.Trading.RealMode = true
	cfg.Strategy.StopLossPct = 12.5
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, strategy.Real, loaded.Mode())

	p, err := loaded.StrategyParams()
	require.NoError(t, err)
	assert.Equal(t, "12.5", p.StopLossPct.String())
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signalbot.json")

	cfg := Default()
	cfg.Journal.Type = "sqlite"
	cfg.Journal.DBPath = "trades.db"
	require.NoError(t, cfg.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"db_path": "trades.db"`)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exchange:\n  symbol: SOLUSDT\ntrading:\n  initial_capital: 250\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Exchange.Symbol)
	assert.Equal(t, "1h", cfg.Exchange.Interval)
	assert.Equal(t, 250.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("trading:\n  initial_capital: -5\n"), 0o644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadCredentials(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("BINANCE_API_KEY=key-from-file\nBINANCE_API_SECRET=secret-from-file\n"), 0o600))

	t.Setenv(EnvAPIKey, "key-from-env")
	t.Setenv(EnvAPISecret, "")
	os.Unsetenv(EnvAPISecret)

	creds, err := LoadCredentials(env, filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", creds.APIKey)
	assert.Equal(t, "secret-from-file", creds.APISecret)
	assert.True(t, creds.Complete())
}

func TestCredentialsIncomplete(t *testing.T) {
	assert.False(t, Credentials{APIKey: "k"}.Complete())
	assert.False(t, Credentials{}.Complete())
}
