package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rustyeddy/signalbot/ledger"
)

var (
	tradeHeader    = []string{"trade_id", "time", "symbol", "mode", "action", "price", "qty", "pnl", "reason"}
	equityHeader   = []string{"time", "symbol", "price", "position_qty", "realized_pnl", "unrealized_pnl", "equity"}
	tradeLogHeader = []string{"time", "action", "price", "qty", "pnl"}
)

// CSV appends trades and equity rows to two files. Existing files are kept;
// the header is written only to empty files. An empty equity path disables
// equity rows.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, tw, err := openAppend(tradesPath, tradeHeader)
	if err != nil {
		return nil, err
	}
	j := &CSV{trades: tw, tf: tf}

	if equityPath != "" {
		ef, ew, err := openAppend(equityPath, equityHeader)
		if err != nil {
			tf.Close()
			return nil, err
		}
		j.equity, j.ef = ew, ef
	}
	return j, nil
}

func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSV) RecordTrade(r Record) error {
	err := j.trades.Write([]string{
		r.ID,
		r.Time.UTC().Format(time.RFC3339),
		r.Symbol,
		r.Mode,
		string(r.Side),
		r.Price.String(),
		r.Quantity.String(),
		pnl(r.Trade),
		r.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	if j.equity == nil {
		return nil
	}
	err := j.equity.Write([]string{
		e.Time.UTC().Format(time.RFC3339),
		e.Symbol,
		e.Price.String(),
		e.Position.String(),
		e.Realized.String(),
		e.Unrealized.String(),
		e.Equity().String(),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	if j.equity == nil {
		return nil
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	return j.ef.Close()
}

// WriteTradeLog writes the flat trade log export: one row per trade with
// columns time, action, price, qty and pnl. pnl is empty for BUY rows.
func WriteTradeLog(w io.Writer, trades []ledger.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeLogHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.Time.UTC().Format(time.RFC3339),
			string(t.Side),
			t.Price.String(),
			t.Quantity.String(),
			pnl(t),
		})
		if err != nil {
			return fmt.Errorf("write trade %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func pnl(t ledger.Trade) string {
	if !t.RealizedPnL.Valid {
		return ""
	}
	return t.RealizedPnL.Decimal.String()
}
