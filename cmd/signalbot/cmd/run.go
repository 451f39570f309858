package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/signalbot/api"
	"github.com/rustyeddy/signalbot/config"
	"github.com/rustyeddy/signalbot/logging"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trading loop",
	Long: `Run one decision cycle immediately and then one per poll interval until
interrupted. Real orders are only sent when trading.real_mode is true.

On exit the trade log is written to trade_log_<SYMBOL>.csv unless --no-export
is given.

Example:
  signalbot run -c signalbot.yaml`,
	RunE: runRun,
}

var runNoExport bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "do not write the trade log on exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, creds)
	if err != nil {
		return err
	}
	defer a.Close()

	log := logging.For("cmd")
	log.Info("starting",
		"symbol", cfg.Exchange.Symbol,
		"exchange", cfg.Exchange.Kind,
		"interval", cfg.Exchange.Interval,
		"mode", a.engine.Mode(),
		"capital", cfg.InitialCapital())

	if cfg.Server.Enabled {
		router := api.NewRouter(a.runner, api.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      logging.For("api"),
		})
		go func() {
			if err := api.Serve(ctx, cfg.Server.Addr, router); err != nil {
				log.Error("api server", "err", err)
			}
		}()
		log.Info("api listening", "addr", cfg.Server.Addr)
	}

	runErr := a.runner.Run(ctx)

	snap := a.engine.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "\ntrades: %d  realized pnl: %s\n", len(snap.Trades), snap.RealizedPnL.StringFixed(2))
	if !runNoExport {
		path := api.TradeLogFilename(cfg.Exchange.Symbol)
		if err := writeTradeLogFile(path, snap.Trades); err != nil {
			log.Error("export trade log", "err", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "trade log written to %s\n", path)
		}
	}
	return runErr
}
