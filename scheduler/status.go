package scheduler

import (
	"math"
	"time"

	"github.com/rustyeddy/signalbot/ledger"
	"github.com/shopspring/decimal"
)

// Status is the state published after every cycle. Readers get copies and
// never touch the engine.
type Status struct {
	Symbol    string    `json:"symbol"`
	Mode      string    `json:"mode"`
	Running   bool      `json:"running"`
	Cycles    int       `json:"cycles"`
	LastCycle time.Time `json:"last_cycle,omitempty"`

	Capital decimal.Decimal `json:"capital"`
	Price   decimal.Decimal `json:"price"`

	// Indicator values are nil until defined.
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`

	Position      *ledger.Position `json:"position"`
	RealizedPnL   decimal.Decimal  `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal  `json:"unrealized_pnl"`

	LastAction string `json:"last_action,omitempty"`
	LastReason string `json:"last_reason,omitempty"`
	LastError  string `json:"last_error,omitempty"`

	Trades []ledger.Trade `json:"-"`
}

func (s Status) copy() Status {
	if s.Position != nil {
		p := *s.Position
		s.Position = &p
	}
	if s.Trades != nil {
		s.Trades = append([]ledger.Trade(nil), s.Trades...)
	}
	s.RSI = copyFloat(s.RSI)
	s.MACD = copyFloat(s.MACD)
	s.MACDSignal = copyFloat(s.MACDSignal)
	return s
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// defined returns nil for values that are not numbers.
func defined(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
