package market

import "time"

// DefaultLookback is the number of most recent bars a cycle works on.
const DefaultLookback = 150

// Bar represents one OHLCV price bar for a single symbol and interval.
// Bars are produced in chronological order and never modified afterwards.
type Bar struct {
	time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes returns the close prices of bars in the same order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Tail returns the last n bars. When n <= 0 or there are fewer than n bars the
// input is returned unchanged.
func Tail(bars []Bar, n int) []Bar {
	if n <= 0 || len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}

// Last returns the most recent bar.
func Last(bars []Bar) (Bar, bool) {
	if len(bars) == 0 {
		return Bar{}, false
	}
	return bars[len(bars)-1], true
}

// Chronological reports whether bar times are strictly increasing.
func Chronological(bars []Bar) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return false
		}
	}
	return true
}
