package indicators

import (
	"fmt"
	"math"
)

// Params configures the indicator set a strategy consumes.
type Params struct {
	RSIPeriod  int `json:"rsi_period" yaml:"rsi_period"`
	MACDFast   int `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal"`
}

// DefaultParams returns RSI(14) and MACD(12,26,9).
func DefaultParams() Params {
	return Params{
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

func (p Params) Validate() error {
	if p.RSIPeriod <= 0 {
		return fmt.Errorf("rsi period must be positive, got %d", p.RSIPeriod)
	}
	if p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return fmt.Errorf("macd periods must be positive, got %d/%d/%d", p.MACDFast, p.MACDSlow, p.MACDSignal)
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd fast period %d must be below slow period %d", p.MACDFast, p.MACDSlow)
	}
	return nil
}

// Warmup returns the number of closes needed before every value in a
// Snapshot is defined.
func (p Params) Warmup() int {
	return max(p.RSIPeriod+1, p.MACDSlow+p.MACDSignal-1)
}

// Snapshot holds the indicator values attached to one bar. Undefined values
// are NaN.
type Snapshot struct {
	RSI        float64
	MACD       float64
	MACDSignal float64
}

// Defined reports whether all values are usable as a trading signal.
func (s Snapshot) Defined() bool {
	for _, v := range []float64{s.RSI, s.MACD, s.MACDSignal} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Compute returns one Snapshot per close, aligned by index. It has no side
// effects and the value at i only depends on closes[:i+1].
func Compute(closes []float64, p Params) ([]Snapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rsi := NewRSI(p.RSIPeriod)
	macd := NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal)

	out := make([]Snapshot, len(closes))
	for i, c := range closes {
		rsi.Update(c)
		macd.Update(c)
		out[i] = Snapshot{
			RSI:        rsi.Value(),
			MACD:       macd.Value(),
			MACDSignal: macd.Signal(),
		}
	}
	return out, nil
}
