package binance

import (
	"context"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/market"
	"github.com/shopspring/decimal"
)

// Gateway binds a Client to one symbol and implements broker.Gateway and
// broker.SymbolInfo.
type Gateway struct {
	Client *Client
	Symbol string
}

func (g *Gateway) PlaceMarketBuy(ctx context.Context, qty decimal.Decimal) (broker.OrderID, error) {
	return g.place(ctx, broker.Buy, qty)
}

func (g *Gateway) PlaceMarketSell(ctx context.Context, qty decimal.Decimal) (broker.OrderID, error) {
	return g.place(ctx, broker.Sell, qty)
}

func (g *Gateway) place(ctx context.Context, side broker.Side, qty decimal.Decimal) (broker.OrderID, error) {
	resp, err := g.Client.CreateMarketOrder(ctx, g.Symbol, side, qty)
	if err != nil {
		return "", err
	}
	return broker.OrderID(resp.OrderID.String()), nil
}

// MinNotional returns broker.ErrNoMinNotional when the symbol carries no
// notional filter.
func (g *Gateway) MinNotional(ctx context.Context) (decimal.Decimal, error) {
	s, err := g.Client.GetSymbol(ctx, g.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	mn, ok, err := s.MinNotional()
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, broker.ErrNoMinNotional
	}
	return mn, nil
}

// Feed serves the most recent Limit bars of one symbol and interval.
type Feed struct {
	Client   *Client
	Symbol   string
	Interval string
	Limit    int
}

func (f *Feed) Bars(ctx context.Context) ([]market.Bar, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = market.DefaultLookback
	}
	return f.Client.GetKlines(ctx, f.Symbol, f.Interval, limit)
}
