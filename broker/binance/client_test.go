package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "test-key", "test-secret")
	c.httpClient = &http.Client{Timeout: 5 * time.Second}
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("default url", func(t *testing.T) {
		c := NewClient("", "", "")
		assert.Equal(t, LiveURL, c.baseURL)
		assert.False(t, c.HasCredentials())
		assert.NotNil(t, c.httpClient)
	})

	t.Run("custom url", func(t *testing.T) {
		c := NewClient(TestnetURL+"/", "k", "s")
		assert.Equal(t, TestnetURL, c.baseURL)
		assert.True(t, c.HasCredentials())
	})
}

func TestGetKlines_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		assert.Equal(t, "150", r.URL.Query().Get("limit"))

		io.WriteString(w, `[
			[1700000000000,"50.1","51.0","49.5","50.5","12.5",1700000059999,"0",10,"0","0","0"],
			[1700000060000,"50.5","52.0","50.0","51.75","3.25",1700000119999,"0",4,"0","0","0"]
		]`)
	})

	bars, err := c.GetKlines(context.Background(), "BTCUSDT", "1m", 150)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.True(t, bars[0].Time.Equal(time.UnixMilli(1700000000000)))
	assert.Equal(t, 50.1, bars[0].Open)
	assert.Equal(t, 51.0, bars[0].High)
	assert.Equal(t, 49.5, bars[0].Low)
	assert.Equal(t, 50.5, bars[0].Close)
	assert.Equal(t, 12.5, bars[0].Volume)
	assert.Equal(t, 51.75, bars[1].Close)
}

func TestGetKlines_Validation(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "")
	ctx := context.Background()

	_, err := c.GetKlines(ctx, "", "1m", 10)
	assert.Error(t, err)
	_, err = c.GetKlines(ctx, "BTCUSDT", "7m", 10)
	assert.Error(t, err)
	_, err = c.GetKlines(ctx, "BTCUSDT", "1m", 0)
	assert.Error(t, err)
	_, err = c.GetKlines(ctx, "BTCUSDT", "1m", MaxKlines+1)
	assert.Error(t, err)
}

func TestGetKlines_BadRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[[1700000000000,"x","1","1","1","1"]]`)
	})
	_, err := c.GetKlines(context.Background(), "BTCUSDT", "1m", 1)
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	})

	_, err := c.GetSymbol(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = c.GetKlines(context.Background(), "NOPE", "1m", 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -1121, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "Invalid symbol.")
}

const exchangeInfoBody = `{"symbols":[{
	"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT",
	"filters":[
		{"filterType":"PRICE_FILTER","minPrice":"0.01"},
		{"filterType":"LOT_SIZE","minQty":"0.00001","stepSize":"0.00001"},
		{"filterType":"NOTIONAL","minNotional":"5.00000000"}
	]}]}`

func TestGetSymbolAndMinNotional(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		io.WriteString(w, exchangeInfoBody)
	})

	s, err := c.GetSymbol(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "USDT", s.QuoteAsset)

	mn, ok, err := s.MinNotional()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mn.Equal(decimal.NewFromInt(5)))

	g := &Gateway{Client: c, Symbol: "BTCUSDT"}
	mn, err = g.MinNotional(context.Background())
	require.NoError(t, err)
	assert.True(t, mn.Equal(decimal.NewFromInt(5)))

	_, err = c.GetSymbol(context.Background(), "ETHUSDT")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestSymbolMinNotionalPrefersLegacyFilter(t *testing.T) {
	s := Symbol{Filters: []Filter{
		{FilterType: "NOTIONAL", MinNotional: "5"},
		{FilterType: "MIN_NOTIONAL", MinNotional: "10"},
	}}
	mn, ok, err := s.MinNotional()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mn.Equal(decimal.NewFromInt(10)))

	_, ok, err = Symbol{}.MinNotional()
	assert.NoError(t, err)
	assert.False(t, ok)

	g := &Gateway{Client: newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"symbols":[{"symbol":"XUSDT","filters":[]}]}`)
	}), Symbol: "XUSDT"}
	_, err = g.MinNotional(context.Background())
	assert.ErrorIs(t, err, broker.ErrNoMinNotional)
}

func TestListSymbols(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("symbol"))
		io.WriteString(w, `{"symbols":[{"symbol":"BTCUSDT"},{"symbol":"ETHUSDT"}]}`)
	})

	syms, err := c.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, syms)
}

func verifySignature(t *testing.T, query url.Values) {
	t.Helper()
	sig := query.Get("signature")
	query.Del("signature")

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(query.Encode()))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), sig)
	assert.Equal(t, "1700000000000", query.Get("timestamp"))
}

func TestFreeBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))
		verifySignature(t, r.URL.Query())

		io.WriteString(w, `{"canTrade":true,"balances":[
			{"asset":"BTC","free":"0.5","locked":"0"},
			{"asset":"USDT","free":"1234.56","locked":"10"}]}`)
	})

	free, err := c.FreeBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.True(t, free.Equal(decimal.RequireFromString("1234.56")))

	free, err = c.FreeBalance(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, free.IsZero())
}

func TestSignedRequiresCredentials(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "")
	_, err := c.GetAccount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires API credentials")
}

func TestCreateMarketOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/order", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		form, err := url.ParseQuery(string(raw))
		assert.NoError(t, err)

		assert.Equal(t, "BTCUSDT", form.Get("symbol"))
		assert.Equal(t, "MARKET", form.Get("type"))
		assert.Equal(t, "0.123456", form.Get("quantity"))
		assert.True(t, strings.HasPrefix(string(raw), "newOrderRespType="))
		verifySignature(t, form)

		io.WriteString(w, `{"symbol":"BTCUSDT","orderId":28,"clientOrderId":"abc","status":"FILLED","executedQty":"0.123456"}`)
	})

	g := &Gateway{Client: c, Symbol: "BTCUSDT"}
	oid, err := g.PlaceMarketBuy(context.Background(), decimal.RequireFromString("0.123456"))
	require.NoError(t, err)
	assert.Equal(t, broker.OrderID("28"), oid)

	_, err = g.PlaceMarketSell(context.Background(), decimal.RequireFromString("0.123456"))
	require.NoError(t, err)
}

func TestCreateMarketOrder_Validation(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", "s")
	_, err := c.CreateMarketOrder(context.Background(), "BTCUSDT", broker.Side("HOLD"), decimal.NewFromInt(1))
	assert.Error(t, err)
	_, err = c.CreateMarketOrder(context.Background(), "BTCUSDT", broker.Buy, decimal.Zero)
	assert.Error(t, err)
}

func TestCreateMarketOrder_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":-1013,"msg":"Filter failure: NOTIONAL"}`)
	})

	g := &Gateway{Client: c, Symbol: "BTCUSDT"}
	_, err := g.PlaceMarketBuy(context.Background(), decimal.NewFromInt(1))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -1013, apiErr.Code)
}

func TestFeed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "150", r.URL.Query().Get("limit"))
		io.WriteString(w, `[[1700000000000,"1","1","1","1","1"]]`)
	})

	f := &Feed{Client: c, Symbol: "BTCUSDT", Interval: "1m"}
	bars, err := f.Bars(context.Background())
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ping", r.URL.Path)
		io.WriteString(w, `{}`)
	})
	assert.NoError(t, c.Ping(context.Background()))
}
