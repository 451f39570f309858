package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/signalbot/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display trade journal records from a SQLite database.

Subcommands:
  list   - List trades, optionally for one symbol
  trade  - Get details of a specific trade by ID
  today  - List trades made today
  day    - List trades made on a specific day

Examples:
  signalbot journal list --symbol BTCUSDT
  signalbot journal trade <trade-id>
  signalbot journal day 2024-01-15`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades made today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades made on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath string
	journalSymbol string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./signalbot.sqlite", "path to SQLite journal DB")
	journalListCmd.Flags().StringVarP(&journalSymbol, "symbol", "s", "", "only trades of this symbol")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 0, "maximum number of trades (0 for all)")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTrades(journalSymbol, journalLimit)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return journal.FormatTrades(cmd.OutOrStdout(), recs)
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:     %s\n", rec.ID)
	fmt.Fprintf(out, "symbol: %s (%s)\n", rec.Symbol, rec.Mode)
	fmt.Fprintf(out, "trade:  %s\n", rec.Trade)
	fmt.Fprintf(out, "reason: %s\n", rec.Reason)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return journal.FormatTrades(cmd.OutOrStdout(), recs)
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
