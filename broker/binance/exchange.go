package binance

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

var ErrUnknownSymbol = errors.New("binance: unknown symbol")

// Filter is one entry of a symbol's trading rules. Only the fields used here
// are decoded.
type Filter struct {
	FilterType  string `json:"filterType"`
	MinNotional string `json:"minNotional,omitempty"`
	MinQty      string `json:"minQty,omitempty"`
	StepSize    string `json:"stepSize,omitempty"`
}

type Symbol struct {
	Symbol     string   `json:"symbol"`
	Status     string   `json:"status"`
	BaseAsset  string   `json:"baseAsset"`
	QuoteAsset string   `json:"quoteAsset"`
	Filters    []Filter `json:"filters"`
}

type exchangeInfo struct {
	Symbols []Symbol `json:"symbols"`
}

// MinNotional returns the minimum order value from the MIN_NOTIONAL filter,
// or the newer NOTIONAL filter. ok is false when neither is present.
func (s Symbol) MinNotional() (mn decimal.Decimal, ok bool, err error) {
	for _, ft := range []string{"MIN_NOTIONAL", "NOTIONAL"} {
		for _, f := range s.Filters {
			if f.FilterType != ft || f.MinNotional == "" {
				continue
			}
			mn, err = decimal.NewFromString(f.MinNotional)
			if err != nil {
				return decimal.Zero, false, fmt.Errorf("parse %s: %w", ft, err)
			}
			return mn, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// GetSymbol fetches the trading rules of one symbol.
func (c *Client) GetSymbol(ctx context.Context, symbol string) (Symbol, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var info exchangeInfo
	if err := c.get(ctx, "/api/v3/exchangeInfo", params, &info); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == -1121 {
			return Symbol{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
		return Symbol{}, fmt.Errorf("get exchange info: %w", err)
	}
	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return s, nil
		}
	}
	return Symbol{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
}

// ListSymbols returns the names of every symbol the exchange lists.
func (c *Client) ListSymbols(ctx context.Context) ([]string, error) {
	var info exchangeInfo
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &info); err != nil {
		return nil, fmt.Errorf("get exchange info: %w", err)
	}
	out := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		out = append(out, s.Symbol)
	}
	return out, nil
}
