package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/signalbot/api"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/ledger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <symbol>",
	Short: "Export the journaled trade log of a symbol as CSV",
	Long: `Write the trades of one symbol from the SQLite journal as a CSV file with
columns time, action, price, qty and pnl.

Example:
  signalbot export BTCUSDT --db signalbot.sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportDBPath string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportDBPath, "db", "d", "./signalbot.sqlite", "path to SQLite journal DB")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default trade_log_<SYMBOL>.csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	j, err := journal.NewSQLite(exportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTrades(symbol, 0)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	path := exportOutput
	if path == "" {
		path = api.TradeLogFilename(symbol)
	}
	if err := writeTradeLogFile(path, journal.Trades(recs)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(recs), path)
	return nil
}

func writeTradeLogFile(path string, trades []ledger.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := journal.WriteTradeLog(f, trades); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
