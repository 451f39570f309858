package market

import (
	"fmt"
	"time"
)

var intervals = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// ParseInterval maps an exchange kline interval ("1m", "4h", "1d", ...) to its
// duration.
func ParseInterval(s string) (time.Duration, error) {
	d, ok := intervals[s]
	if !ok {
		return 0, fmt.Errorf("unsupported interval: %q", s)
	}
	return d, nil
}

// IntervalString is the inverse of ParseInterval.
func IntervalString(d time.Duration) (string, error) {
	for k, v := range intervals {
		if v == d {
			return k, nil
		}
	}
	return "", fmt.Errorf("cannot map interval: %s", d)
}
