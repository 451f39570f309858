// Package logging configures log/slog for the bot and hands out per-component
// loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	out           io.Writer = os.Stderr
	format                  = "text"
	level                   = slog.LevelInfo
	enabledTopics           = map[string]bool{}
)

func init() {
	// DEBUG_TOPICS=strategy,binance turns on debug output for those
	// components only; "all" enables every component.
	enabledTopics = parseTopics(os.Getenv("DEBUG_TOPICS"))
}

func parseTopics(s string) map[string]bool {
	topics := map[string]bool{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "all" {
			t = "*"
		}
		if t != "" {
			topics[t] = true
		}
	}
	return topics
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Setup installs the default logger writing to w in the given format
// ("text" or "json").
func Setup(w io.Writer, lvl, fmtName string) (*slog.Logger, error) {
	l, err := ParseLevel(lvl)
	if err != nil {
		return nil, err
	}
	switch fmtName {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", fmtName)
	}
	if fmtName == "" {
		fmtName = "text"
	}

	mu.Lock()
	out, format, level = w, fmtName, l
	mu.Unlock()

	logger := slog.New(newHandler(w, fmtName, l))
	slog.SetDefault(logger)
	return logger, nil
}

func newHandler(w io.Writer, fmtName string, l slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: l}
	if fmtName == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// For returns a logger tagged with component=name. Components listed in
// DEBUG_TOPICS log at debug level regardless of the configured level.
func For(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if enabledTopics["*"] || enabledTopics[name] {
		return slog.New(newHandler(out, format, slog.LevelDebug)).With("component", name)
	}
	return slog.Default().With("component", name)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
