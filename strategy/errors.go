package strategy

import (
	"errors"

	"github.com/rustyeddy/signalbot/ledger"
)

var (
	// ErrDataUnavailable means the price or an indicator value was missing.
	// The cycle holds and nothing changes.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrGatewayFailure means an order could not be submitted. The ledger
	// change of the cycle has already been committed and is kept.
	ErrGatewayFailure = errors.New("gateway failure")

	// ErrConfiguration means the cycle inputs cannot produce a valid order,
	// e.g. no capital or capital below the exchange minimum.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidState is a ledger invariant violation.
	ErrInvalidState = ledger.ErrInvalidState
)

// IsFatal reports whether err should halt the engine for inspection. Only
// ledger invariant violations are fatal; every other cycle error is recovered
// by holding and retrying on the next cycle.
func IsFatal(err error) bool {
	return errors.Is(err, ledger.ErrInvalidState) || errors.Is(err, ledger.ErrPositionOpen)
}
