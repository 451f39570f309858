package indicators

import (
	"fmt"
	"math"
)

// RSI is a streaming Relative Strength Index using Wilder smoothing.
//
// The first average gain/loss is the simple mean of the first period price
// changes; later averages are avg = (avg*(period-1) + x) / period. Because a
// change needs two closes, the first value is available after period+1 updates.
type RSI struct {
	period  int
	prev    float64
	hasPrev bool
	changes int

	sumGain float64
	sumLoss float64
	avgGain float64
	avgLoss float64
}

// NewRSI creates a new RSI indicator with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	*r = RSI{period: r.period}
}

func (r *RSI) Update(v float64) {
	if !r.hasPrev {
		r.prev = v
		r.hasPrev = true
		return
	}

	change := v - r.prev
	r.prev = v
	gain := math.Max(change, 0)
	loss := math.Max(-change, 0)

	r.changes++
	p := float64(r.period)
	switch {
	case r.changes < r.period:
		r.sumGain += gain
		r.sumLoss += loss
	case r.changes == r.period:
		r.avgGain = (r.sumGain + gain) / p
		r.avgLoss = (r.sumLoss + loss) / p
	default:
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	}
}

func (r *RSI) Ready() bool {
	return r.changes >= r.period
}

// Value returns the RSI in [0, 100]. A series with no movement at all over the
// window reads 50; one with only gains reads 100.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return math.NaN()
	}
	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
