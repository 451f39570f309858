package cmd

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/signalbot/config"
	"github.com/rustyeddy/signalbot/strategy"
	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single simulated decision cycle and print it",
	Long: `Fetch the configured feed once, compute the indicators and print the
decision the strategy would take. Nothing is journaled and no order is sent,
whatever trading.real_mode says.

Example:
  signalbot cycle -c signalbot.yaml`,
	Args: cobra.NoArgs,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(envFile)
	if err != nil {
		return err
	}

	dry := *cfg
	dry.Trading.RealMode = false
	dry.Journal = config.JournalConfig{Type: "none"}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, &dry, creds)
	if err != nil {
		return err
	}
	defer a.Close()

	delta, err := a.runner.Cycle(ctx)
	printDelta(cmd, cfg.Exchange.Symbol, delta)
	return err
}

func printDelta(cmd *cobra.Command, symbol string, d strategy.Delta) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", symbol, d.Signal.Time.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  price:       %s\n", d.Signal.Price)
	fmt.Fprintf(out, "  rsi:         %s\n", num(d.Signal.RSI))
	fmt.Fprintf(out, "  macd:        %s\n", num(d.Signal.MACD))
	fmt.Fprintf(out, "  macd signal: %s\n", num(d.Signal.MACDSignal))
	fmt.Fprintf(out, "  decision:    %s (%s)\n", d.Decision.Action, d.Decision.Reason)
	if d.Decision.Action != strategy.Hold {
		fmt.Fprintf(out, "  quantity:    %s\n", d.Decision.Quantity)
	}
	if d.Trade != nil {
		fmt.Fprintf(out, "  trade:       %s\n", d.Trade)
	}
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

