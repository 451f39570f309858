package cmd

import (
	"fmt"

	"github.com/rustyeddy/signalbot/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  signalbot config init -o signalbot.yaml
  signalbot config validate -c signalbot.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "signalbot.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintf(out, "\nPut %s and %s in %s, edit the file and run with:\n", config.EnvAPIKey, config.EnvAPISecret, envFile)
	fmt.Fprintf(out, "  signalbot run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configPath)
	fmt.Fprintf(out, "  Exchange: %s %s %s (lookback %d)\n", cfg.Exchange.Kind, cfg.Exchange.Symbol, cfg.Exchange.Interval, cfg.Exchange.Lookback)
	fmt.Fprintf(out, "  Strategy: RSI(%d) < %.0f, MACD(%d,%d,%d), SL %.1f%%, TP %.1f%%/%.1f%%\n",
		cfg.Strategy.RSIPeriod, cfg.Strategy.RSIOversold,
		cfg.Strategy.MACDFast, cfg.Strategy.MACDSlow, cfg.Strategy.MACDSignal,
		cfg.Strategy.StopLossPct, cfg.Strategy.TakeProfitPct, cfg.Strategy.ExtendedTakeProfitPct)
	fmt.Fprintf(out, "  Trading: %s, capital %.2f %s, every %s\n", cfg.Mode(), cfg.Trading.InitialCapital, cfg.Exchange.QuoteAsset, cfg.Trading.PollInterval)
	fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
	return nil
}
