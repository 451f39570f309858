package binance

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preflightServer(t *testing.T, account, exchange string) *Client {
	return newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/account":
			io.WriteString(w, account)
		case "/api/v3/exchangeInfo":
			io.WriteString(w, exchange)
		default:
			http.NotFound(w, r)
		}
	})
}

const (
	tradableAccount = `{"canTrade":true,"balances":[{"asset":"USDT","free":"500","locked":"0"}]}`
	btcusdtInfo     = `{"symbols":[{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT","filters":[]}]}`
)

func TestPreflight(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		account  string
		exchange string
		capital  string
		wantErr  error
		errMsg   string
	}{
		{"ok", tradableAccount, btcusdtInfo, "500", nil, ""},
		{"exceeds balance", tradableAccount, btcusdtInfo, "500.01", ErrInsufficientBalance, ""},
		{"below one unit", tradableAccount, btcusdtInfo, "0.5", nil, "below 1"},
		{"cannot trade", `{"canTrade":false,"balances":[]}`, btcusdtInfo, "10", ErrNotTradable, ""},
		{"unknown symbol", tradableAccount, `{"symbols":[]}`, "10", ErrUnknownSymbol, ""},
		{"halted symbol", tradableAccount, `{"symbols":[{"symbol":"BTCUSDT","status":"HALT","quoteAsset":"USDT"}]}`, "10", ErrNotTradable, ""},
		{"wrong quote", tradableAccount, `{"symbols":[{"symbol":"BTCUSDT","status":"TRADING","quoteAsset":"BUSD"}]}`, "10", nil, "quoted in BUSD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := preflightServer(t, tt.account, tt.exchange)
			err := c.Preflight(ctx, "BTCUSDT", "USDT", decimal.RequireFromString(tt.capital))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreflightRejectedCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":-2015,"msg":"Invalid API-key, IP, or permissions for action."}`)
	})

	err := c.Preflight(context.Background(), "BTCUSDT", "USDT", decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate credentials")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -2015, apiErr.Code)
}
