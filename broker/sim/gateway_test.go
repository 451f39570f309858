package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRecordsOrders(t *testing.T) {
	ctx := context.Background()
	g := NewGateway("BTCUSDT")

	buyID, err := g.PlaceMarketBuy(ctx, decimal.NewFromInt(20))
	require.NoError(t, err)
	sellID, err := g.PlaceMarketSell(ctx, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.NotEqual(t, buyID, sellID)

	orders := g.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, broker.Buy, orders[0].Side)
	assert.Equal(t, broker.Sell, orders[1].Side)
	assert.Equal(t, "BTCUSDT", orders[0].Symbol)
	assert.True(t, orders[0].Quantity.Equal(decimal.NewFromInt(20)))
}

func TestGatewayFailure(t *testing.T) {
	ctx := context.Background()
	g := NewGateway("BTCUSDT")
	boom := errors.New("exchange down")

	g.SetFailure(boom)
	_, err := g.PlaceMarketBuy(ctx, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, g.Orders())

	g.SetFailure(nil)
	_, err = g.PlaceMarketBuy(ctx, decimal.NewFromInt(1))
	assert.NoError(t, err)
}

func TestGatewayRejectsBadQuantity(t *testing.T) {
	_, err := NewGateway("X").PlaceMarketSell(context.Background(), decimal.Zero)
	assert.Error(t, err)
}

func TestGatewayDelayHonorsDeadline(t *testing.T) {
	g := NewGateway("BTCUSDT")
	g.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.PlaceMarketBuy(ctx, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, g.Orders())
}

func TestGatewayMinNotional(t *testing.T) {
	g := NewGateway("BTCUSDT")
	mn, err := g.MinNotional(context.Background())
	require.NoError(t, err)
	assert.True(t, mn.Equal(broker.DefaultMinNotional))

	g.SetMinNotional(decimal.NewFromInt(10))
	mn, _ = g.MinNotional(context.Background())
	assert.True(t, mn.Equal(decimal.NewFromInt(10)))
}

func TestGatewayImplementsInterfaces(t *testing.T) {
	var _ broker.Gateway = NewGateway("X")
	var _ broker.SymbolInfo = NewGateway("X")
}
