// Package indicators provides technical analysis indicators for trading
package indicators

// Indicator computes a single streaming value from a close-price series.
// It is deterministic and only ever sees values up to the latest update, so a
// value never depends on later bars.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next close price.
	Update(close float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value, or NaN when !Ready().
	Value() float64
}
