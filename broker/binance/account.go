package binance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

type Account struct {
	CanTrade bool      `json:"canTrade"`
	Balances []Balance `json:"balances"`
}

// GetAccount fetches the account. It doubles as a credential check.
func (c *Client) GetAccount(ctx context.Context) (Account, error) {
	var acct Account
	if err := c.signed(ctx, "GET", "/api/v3/account", nil, &acct); err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

// FreeBalance returns the free amount of asset, zero when the account holds
// none.
func (c *Client) FreeBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	acct, err := c.GetAccount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, b := range acct.Balances {
		if b.Asset == asset {
			return b.Free, nil
		}
	}
	return decimal.Zero, nil
}
