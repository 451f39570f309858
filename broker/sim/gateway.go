// Package sim provides a paper exchange: orders are accepted and recorded but
// never leave the process.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/rustyeddy/signalbot/id"
	"github.com/shopspring/decimal"
)

type Gateway struct {
	mu          sync.Mutex
	symbol      string
	minNotional decimal.Decimal
	orders      []broker.Order
	fail        error
	delay       time.Duration
}

// NewGateway returns a paper gateway for symbol reporting the default minimum
// notional.
func NewGateway(symbol string) *Gateway {
	return &Gateway{
		symbol:      symbol,
		minNotional: broker.DefaultMinNotional,
	}
}

// SetMinNotional changes the minimum order value reported by MinNotional.
func (g *Gateway) SetMinNotional(mn decimal.Decimal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.minNotional = mn
}

// SetFailure makes every following order fail with err until cleared with nil.
func (g *Gateway) SetFailure(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

// SetDelay makes every order take d before it is accepted. The wait honors
// context cancellation.
func (g *Gateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delay = d
}

func (g *Gateway) PlaceMarketBuy(ctx context.Context, qty decimal.Decimal) (broker.OrderID, error) {
	return g.place(ctx, broker.Buy, qty)
}

func (g *Gateway) PlaceMarketSell(ctx context.Context, qty decimal.Decimal) (broker.OrderID, error) {
	return g.place(ctx, broker.Sell, qty)
}

func (g *Gateway) place(ctx context.Context, side broker.Side, qty decimal.Decimal) (broker.OrderID, error) {
	g.mu.Lock()
	delay, fail := g.delay, g.fail
	g.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fail != nil {
		return "", fail
	}
	if !qty.IsPositive() {
		return "", fmt.Errorf("sim: invalid quantity %s", qty)
	}

	now := time.Now()
	o := broker.Order{
		ID:       broker.OrderID(id.At(now)),
		Symbol:   g.symbol,
		Side:     side,
		Quantity: qty,
		Time:     now,
	}

	g.mu.Lock()
	g.orders = append(g.orders, o)
	g.mu.Unlock()
	return o.ID, nil
}

func (g *Gateway) MinNotional(ctx context.Context) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minNotional, nil
}

// Orders returns the accepted orders in submission order.
func (g *Gateway) Orders() []broker.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]broker.Order, len(g.orders))
	copy(out, g.orders)
	return out
}
