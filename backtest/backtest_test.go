package backtest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/signalbot/market"
	"github.com/rustyeddy/signalbot/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func bars(closes ...float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func decline(from, to float64) []float64 {
	var out []float64
	for v := from; v >= to; v-- {
		out = append(out, v)
	}
	return out
}

func opts() Options {
	return Options{InitialCapital: decimal.NewFromInt(1000), Lookback: 150}
}

func TestRunStopLoss(t *testing.T) {
	closes := append(decline(148, 49), 50, 42)

	r, err := Run(context.Background(), strategy.DefaultParams(), bars(closes...), opts())
	require.NoError(t, err)

	assert.Equal(t, len(closes), r.Bars)
	assert.Equal(t, 1, r.Trades)
	assert.Equal(t, 0, r.Wins)
	assert.Equal(t, 1, r.Losses)
	assert.Equal(t, "-160", r.NetPnL.String())
	assert.Equal(t, "840", r.EndCapital.String())
	assert.InDelta(t, -16.0, r.ReturnPct, 1e-9)
	assert.InDelta(t, 16.0, r.MaxDDPct, 1e-9)
	assert.Nil(t, r.OpenPosition)
	require.Len(t, r.Log, 2)
	assert.True(t, r.Log[0].Time.Equal(t0.Add(100*time.Hour)), "trades are stamped with the bar time")
}

func TestRunCloseEnd(t *testing.T) {
	closes := append(decline(148, 49), 50, 52)

	r, err := Run(context.Background(), strategy.DefaultParams(), bars(closes...), opts())
	require.NoError(t, err)
	require.NotNil(t, r.OpenPosition)
	assert.Equal(t, 0, r.Trades)

	o := opts()
	o.CloseEnd = true
	r, err = Run(context.Background(), strategy.DefaultParams(), bars(closes...), o)
	require.NoError(t, err)
	assert.Nil(t, r.OpenPosition)
	assert.Equal(t, 1, r.Wins)
	assert.Equal(t, "40", r.NetPnL.String())
	assert.InDelta(t, 100.0, r.WinRate, 1e-9)
	assert.Equal(t, "EndOfReplay", r.Log[1].Reason)
}

func TestRunValidation(t *testing.T) {
	_, err := Run(context.Background(), strategy.DefaultParams(), nil, opts())
	assert.ErrorIs(t, err, strategy.ErrDataUnavailable)

	_, err = Run(context.Background(), strategy.DefaultParams(), bars(1, 2), Options{})
	assert.ErrorIs(t, err, strategy.ErrConfiguration)
}

func TestRunNoSignal(t *testing.T) {
	var closes []float64
	for v := 1.0; v <= 80; v++ {
		closes = append(closes, v)
	}
	r, err := Run(context.Background(), strategy.DefaultParams(), bars(closes...), opts())
	require.NoError(t, err)
	assert.Equal(t, 0, r.Trades)
	assert.Empty(t, r.Log)
	assert.Equal(t, 0.0, r.MaxDDPct)
}

func TestDrawdown(t *testing.T) {
	var d drawdown
	d.update(decimal.NewFromInt(100))
	d.update(decimal.NewFromInt(80))
	d.update(decimal.NewFromInt(120))
	d.update(decimal.NewFromInt(90))
	assert.InDelta(t, 25.0, d.maxPct, 1e-9)
}

func TestPrint(t *testing.T) {
	closes := append(decline(148, 49), 50, 42)
	r, err := Run(context.Background(), strategy.DefaultParams(), bars(closes...), opts())
	require.NoError(t, err)

	var buf bytes.Buffer
	Print(&buf, "BTCUSDT", r)
	out := buf.String()
	assert.Contains(t, out, "Symbol:        BTCUSDT")
	assert.Contains(t, out, "Net P/L:       -160.00")
	assert.Contains(t, out, "Max Drawdown:  16.00%")
}
