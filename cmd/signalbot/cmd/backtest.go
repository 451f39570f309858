package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/signalbot/backtest"
	"github.com/rustyeddy/signalbot/feed"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/spf13/cobra"
)

var (
	btBarsFile string
	btCloseEnd bool
	btTrades   bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy over a CSV bar history",
	Long: `Run the configured strategy over every bar of a recorded history in
simulated mode and print a performance summary. The bars file defaults to
exchange.bars_file from the config.

Example:
  signalbot backtest -c signalbot.yaml --bars data/BTCUSDT_1h.csv --close-end`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&btBarsFile, "bars", "", "CSV bars file (time,open,high,low,close,volume)")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", false, "close an open position at the last bar")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", false, "print the trade log after the summary")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := btBarsFile
	if path == "" {
		path = cfg.Exchange.BarsFile
	}
	if path == "" {
		return fmt.Errorf("no bars file: pass --bars or set exchange.bars_file")
	}

	bars, err := feed.LoadBarsCSV(path)
	if err != nil {
		return err
	}
	params, err := cfg.StrategyParams()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := backtest.Run(ctx, params, bars, backtest.Options{
		InitialCapital: cfg.InitialCapital(),
		MinNotional:    cfg.MinNotional(),
		Lookback:       cfg.Exchange.Lookback,
		CloseEnd:       btCloseEnd,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	backtest.Print(out, cfg.Exchange.Symbol, res)
	if btTrades {
		return journal.WriteTradeLog(out, res.Log)
	}
	return nil
}
