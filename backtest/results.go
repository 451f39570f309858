package backtest

import (
	"fmt"
	"io"
	"time"
)

func Print(w io.Writer, symbol string, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Symbol:        %s\n", symbol)
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Capital: %s\n", r.StartCapital.StringFixed(2))
	fmt.Fprintf(w, "End Capital:   %s\n", r.EndCapital.StringFixed(2))
	fmt.Fprintf(w, "Net P/L:       %s\n", r.NetPnL.StringFixed(2))
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)

	if r.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", r.ProfitFactor)
	}
	if r.MaxDDPct > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDDPct)
	}
	if r.OpenPosition != nil {
		fmt.Fprintf(w, "Open Position: %s @ %s\n", r.OpenPosition.Quantity, r.OpenPosition.EntryPrice)
	}

	fmt.Fprintln(w)
}
