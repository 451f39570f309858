package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 8*math.Sin(float64(i)/5) + 3*math.Cos(float64(i)/2)
	}
	return out
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 34, p.Warmup())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		errMsg string
	}{
		{"zero rsi", Params{RSIPeriod: 0, MACDFast: 12, MACDSlow: 26, MACDSignal: 9}, "rsi period"},
		{"zero signal", Params{RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 0}, "macd periods"},
		{"fast >= slow", Params{RSIPeriod: 14, MACDFast: 26, MACDSlow: 12, MACDSignal: 9}, "below slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			_, err = Compute(wave(10), tt.params)
			assert.Error(t, err)
		})
	}
}

func TestComputeAligned(t *testing.T) {
	closes := wave(150)
	snaps, err := Compute(closes, DefaultParams())
	require.NoError(t, err)
	assert.Len(t, snaps, len(closes))
}

func TestComputeWarmup(t *testing.T) {
	p := DefaultParams()
	snaps, err := Compute(wave(60), p)
	require.NoError(t, err)

	for i, s := range snaps {
		assert.Equal(t, i < p.RSIPeriod, math.IsNaN(s.RSI), "rsi at %d", i)
		assert.Equal(t, i < p.MACDSlow-1, math.IsNaN(s.MACD), "macd at %d", i)
		assert.Equal(t, i < p.MACDSlow+p.MACDSignal-2, math.IsNaN(s.MACDSignal), "signal at %d", i)
		assert.Equal(t, i >= p.Warmup()-1, s.Defined(), "defined at %d", i)
	}
}

func TestComputeShortSeriesNeverDefined(t *testing.T) {
	p := DefaultParams()
	for n := 0; n <= p.RSIPeriod; n++ {
		snaps, err := Compute(wave(n), p)
		require.NoError(t, err)
		for _, s := range snaps {
			assert.True(t, math.IsNaN(s.RSI))
			assert.False(t, s.Defined())
		}
	}
}

func TestComputeNoLookAhead(t *testing.T) {
	closes := wave(120)
	full, err := Compute(closes, DefaultParams())
	require.NoError(t, err)

	for _, k := range []int{20, 34, 35, 80, 119} {
		prefix, err := Compute(closes[:k], DefaultParams())
		require.NoError(t, err)
		for i := range prefix {
			assertSameFloat(t, full[i].RSI, prefix[i].RSI)
			assertSameFloat(t, full[i].MACD, prefix[i].MACD)
			assertSameFloat(t, full[i].MACDSignal, prefix[i].MACDSignal)
		}
	}
}

func TestSnapshotDefined(t *testing.T) {
	assert.True(t, Snapshot{RSI: 25, MACD: 1.2, MACDSignal: 0.8}.Defined())
	assert.False(t, Snapshot{RSI: math.NaN(), MACD: 1.2, MACDSignal: 0.8}.Defined())
	assert.False(t, Snapshot{RSI: 25, MACD: math.Inf(1), MACDSignal: 0.8}.Defined())
}

func assertSameFloat(t *testing.T, want, got float64) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got))
		return
	}
	assert.Equal(t, want, got)
}
