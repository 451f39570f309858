package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(r Record) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, mode, time, action, price, qty, pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Symbol, r.Mode, r.Time.UTC(), string(r.Side),
		r.Price, r.Quantity, r.RealizedPnL, r.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, symbol, price, position_qty, realized_pnl, unrealized_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Symbol, e.Price, e.Position, e.Realized, e.Unrealized,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
