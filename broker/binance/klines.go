package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/signalbot/market"
)

// MaxKlines is the largest limit the klines endpoint accepts.
const MaxKlines = 1000

// GetKlines fetches the most recent limit bars for symbol at interval, oldest
// first. The last bar may still be forming.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]market.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if _, err := market.ParseInterval(interval); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxKlines {
		return nil, fmt.Errorf("limit must be in 1..%d, got %d", MaxKlines, limit)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var rows [][]any
	if err := c.get(ctx, "/api/v3/klines", params, &rows); err != nil {
		return nil, fmt.Errorf("get klines: %w", err)
	}

	bars := make([]market.Bar, 0, len(rows))
	for i, row := range rows {
		b, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// parseKline converts one kline row:
//
//	[openTime, open, high, low, close, volume, closeTime, ...]
func parseKline(row []any) (market.Bar, error) {
	if len(row) < 6 {
		return market.Bar{}, fmt.Errorf("short row: %d fields", len(row))
	}

	openTime, err := parseNumber(row[0])
	if err != nil {
		return market.Bar{}, fmt.Errorf("open time: %w", err)
	}

	var vals [5]float64
	for i := range vals {
		v, err := parseNumber(row[i+1])
		if err != nil {
			return market.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return market.Bar{
		Time:   time.UnixMilli(int64(openTime)).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// parseNumber accepts the exchange's mix of JSON numbers and numeric strings.
func parseNumber(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
