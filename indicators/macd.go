package indicators

import (
	"fmt"
	"math"
)

// MACD tracks EMA(fast) - EMA(slow) and a signal line that is an EMA of the
// MACD values. The MACD line is ready after slow updates and the signal line
// after slow+signal-1 updates.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA

	fastPeriod, slowPeriod, signalPeriod int
}

// NewMACD creates a MACD indicator. The common parameters are 12, 26, 9.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:         NewEMA(fast),
		slow:         NewEMA(slow),
		signal:       NewEMA(signal),
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// Warmup is the number of updates before the signal line is ready.
func (m *MACD) Warmup() int {
	return m.slowPeriod + m.signalPeriod - 1
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(v float64) {
	m.fast.Update(v)
	m.slow.Update(v)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.Update(m.fast.Value() - m.slow.Value())
	}
}

// Ready reports whether both the MACD and the signal line are defined.
func (m *MACD) Ready() bool {
	return m.signal.Ready()
}

// Value returns the MACD line, or NaN before the slow EMA is ready.
func (m *MACD) Value() float64 {
	if !m.fast.Ready() || !m.slow.Ready() {
		return math.NaN()
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal returns the signal line, or NaN before it is ready.
func (m *MACD) Signal() float64 {
	return m.signal.Value()
}

// Histogram returns MACD - signal.
func (m *MACD) Histogram() float64 {
	return m.Value() - m.Signal()
}
