// Package feed supplies lookback windows of price bars to the scheduler.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rustyeddy/signalbot/market"
)

// ErrExhausted is returned once a replay has served its last bar.
var ErrExhausted = errors.New("feed: no more bars")

// Replay serves a recorded bar history one bar at a time: every call to Bars
// reveals the next bar and returns the trailing window ending at it.
type Replay struct {
	mu       sync.Mutex
	bars     []market.Bar
	lookback int
	next     int
}

// NewReplay starts the replay once a full lookback window is available, or at
// the last bar when the history is shorter.
func NewReplay(bars []market.Bar, lookback int) *Replay {
	if lookback <= 0 {
		lookback = market.DefaultLookback
	}
	return &Replay{
		bars:     bars,
		lookback: lookback,
		next:     min(lookback, len(bars)),
	}
}

func (r *Replay) Bars(ctx context.Context) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bars) == 0 || r.next > len(r.bars) {
		return nil, ErrExhausted
	}
	window := market.Tail(r.bars[:r.next], r.lookback)
	r.next++

	out := make([]market.Bar, len(window))
	copy(out, window)
	return out, nil
}

// Remaining is the number of windows left to serve.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bars) == 0 {
		return 0
	}
	return max(0, len(r.bars)-r.next+1)
}
