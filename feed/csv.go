package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/signalbot/market"
)

// ReadBarsCSV reads OHLCV rows:
//
//	time,open,high,low,close[,volume]
//
// where time is RFC3339, RFC3339Nano or Unix milliseconds. A single header
// row ("time,...") is allowed and empty or short rows are skipped. Bars must
// be in chronological order.
func ReadBarsCSV(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		bars     []market.Bar
		sawFirst bool
		line     int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, ok, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if n := len(bars); n > 0 && !b.Time.After(bars[n-1].Time) {
			return nil, fmt.Errorf("line %d: bar at %s is not after %s", line, b.Time, bars[n-1].Time)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// LoadBarsCSV reads a bar file from disk.
func LoadBarsCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func parseBarRow(row []string) (market.Bar, bool, error) {
	// Need at least: time,open,high,low,close
	if len(row) < 5 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Bar{}, false, err
	}

	var vals [5]float64
	n := 4
	if len(row) > 5 {
		n = 5
	}
	names := [...]string{"open", "high", "low", "close", "volume"}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: %w", names[i], row[i+1], err)
		}
		vals[i] = v
	}

	return market.Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	// Accept RFC3339 or RFC3339Nano.
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, s)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
		}
		t = t2
	}
	return t, nil
}

// WriteBarsCSV writes bars in the format ReadBarsCSV accepts.
func WriteBarsCSV(w io.Writer, bars []market.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		err := cw.Write([]string{
			b.Time.UTC().Format(time.RFC3339),
			f(b.Open), f(b.High), f(b.Low), f(b.Close), f(b.Volume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
