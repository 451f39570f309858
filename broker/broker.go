// Package broker defines the execution gateway the strategy engine submits
// market orders through.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderID identifies an order accepted by a gateway.
type OrderID string

// Gateway places market orders for one symbol. Symbol and authentication are
// the gateway's concern; callers only pass quantities.
type Gateway interface {
	PlaceMarketBuy(ctx context.Context, qty decimal.Decimal) (OrderID, error)
	PlaceMarketSell(ctx context.Context, qty decimal.Decimal) (OrderID, error)
}

// SymbolInfo exposes exchange metadata for the traded symbol.
type SymbolInfo interface {
	// MinNotional is the smallest order value (quantity * price) the
	// exchange accepts, in quote currency.
	MinNotional(ctx context.Context) (decimal.Decimal, error)
}

// DefaultMinNotional is used when the exchange does not report a minimum.
var DefaultMinNotional = decimal.NewFromInt(1)

var ErrNoMinNotional = errors.New("broker: symbol has no min notional filter")

// Order is a record of a submitted order.
type Order struct {
	ID       OrderID         `json:"id"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Time     time.Time       `json:"time"`
}

// Place dispatches a market order of the given side.
func Place(ctx context.Context, gw Gateway, side Side, qty decimal.Decimal) (OrderID, error) {
	switch side {
	case Buy:
		return gw.PlaceMarketBuy(ctx, qty)
	case Sell:
		return gw.PlaceMarketSell(ctx, qty)
	default:
		return "", fmt.Errorf("broker: unknown side %q", side)
	}
}

// MinNotionalOrDefault asks info for the minimum order value and falls back
// to DefaultMinNotional when info is nil, fails or reports nothing usable.
func MinNotionalOrDefault(ctx context.Context, info SymbolInfo) (decimal.Decimal, error) {
	if info == nil {
		return DefaultMinNotional, nil
	}
	mn, err := info.MinNotional(ctx)
	if err != nil {
		return DefaultMinNotional, err
	}
	if !mn.IsPositive() {
		return DefaultMinNotional, nil
	}
	return mn, nil
}
