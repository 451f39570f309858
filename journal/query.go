package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/signalbot/ledger"
)

var ErrNotFound = errors.New("journal: not found")

const tradeColumns = `trade_id, symbol, mode, time, action, price, qty, pnl, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec  Record
		side string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Symbol,
		&rec.Mode,
		&rec.Time,
		&side,
		&rec.Price,
		&rec.Quantity,
		&rec.RealizedPnL,
		&rec.Reason,
	)
	rec.Side = ledger.Side(side)
	return rec, err
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (Record, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: trade %q", ErrNotFound, tradeID)
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListTrades returns the trades of symbol in chronological order. An empty
// symbol matches every symbol; limit <= 0 returns all of them.
func (j *SQLite) ListTrades(symbol string, limit int) ([]Record, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades`
	var args []any
	if symbol != "" {
		q += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	q += ` ORDER BY time ASC, trade_id ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, trade_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListEquityBetween returns equity snapshots whose time is within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, symbol, price, position_qty, realized_pnl, unrealized_pnl
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Symbol, &e.Price, &e.Position, &e.Realized, &e.Unrealized); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Trades strips the journal tags from records.
func Trades(recs []Record) []ledger.Trade {
	out := make([]ledger.Trade, len(recs))
	for i, r := range recs {
		out[i] = r.Trade
	}
	return out
}

// FormatTrades writes recs as an aligned table followed by the realized PnL
// total.
func FormatTrades(w io.Writer, recs []Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSYMBOL\tMODE\tACTION\tPRICE\tQTY\tPNL\tREASON")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Time.UTC().Format(time.RFC3339), r.Symbol, r.Mode, r.Side,
			r.Price, r.Quantity, pnl(r.Trade), r.Reason)
	}
	fmt.Fprintf(tw, "\nrealized pnl: %s\n", ledger.SumRealized(Trades(recs)).StringFixed(2))
	return tw.Flush()
}
