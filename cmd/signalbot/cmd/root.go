package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/signalbot/config"
	"github.com/rustyeddy/signalbot/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "signalbot",
	Short: "An RSI/MACD spot trading bot for a single symbol",
	Long: `Signalbot trades one spot symbol with a long-only RSI/MACD strategy.

It provides tools for:
  - Polling market data and running one decision cycle per interval
  - Paper trading against recorded bars or live data
  - Real trading through the Binance spot API
  - Journaling trades and equity to CSV or SQLite
  - Exporting the trade log and serving a read-only status API`,
	SilenceUsage: true,
}

var (
	configPath string
	envFile    string
	logLevel   string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "signalbot.yaml", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "file with BINANCE_API_KEY and BINANCE_API_SECRET")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level from the config")
}

// loadConfig reads the config file and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if _, err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
