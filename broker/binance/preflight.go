package binance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotTradable         = errors.New("binance: trading not allowed")
	ErrInsufficientBalance = errors.New("binance: insufficient balance")
)

// minCapital is the smallest initial capital accepted for real trading, in
// quote units.
var minCapital = decimal.NewFromInt(1)

// Preflight checks that real trading of symbol can start with capital: the
// credentials are accepted, the account may trade, the symbol exists and the
// free quote balance covers capital.
func (c *Client) Preflight(ctx context.Context, symbol, quoteAsset string, capital decimal.Decimal) error {
	acct, err := c.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	if !acct.CanTrade {
		return ErrNotTradable
	}

	s, err := c.GetSymbol(ctx, symbol)
	if err != nil {
		return err
	}
	if s.Status != "" && s.Status != "TRADING" {
		return fmt.Errorf("%w: %s is %s", ErrNotTradable, symbol, s.Status)
	}
	if quoteAsset != "" && s.QuoteAsset != "" && s.QuoteAsset != quoteAsset {
		return fmt.Errorf("symbol %s is quoted in %s, not %s", symbol, s.QuoteAsset, quoteAsset)
	}

	if capital.LessThan(minCapital) {
		return fmt.Errorf("initial capital %s is below %s %s", capital, minCapital, quoteAsset)
	}

	free := decimal.Zero
	for _, b := range acct.Balances {
		if b.Asset == quoteAsset {
			free = b.Free
		}
	}
	if capital.GreaterThan(free) {
		return fmt.Errorf("%w: capital %s exceeds free %s balance %s", ErrInsufficientBalance, capital, quoteAsset, free)
	}
	return nil
}
