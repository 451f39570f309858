// Package binance is a small REST client for the Binance spot API covering
// what a single-symbol bot needs: klines, symbol filters, balances and market
// orders.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// LiveURL is the production spot API.
	LiveURL = "https://api.binance.com"
	// TestnetURL is the spot test network.
	TestnetURL = "https://testnet.binance.vision"

	defaultRecvWindow = 5000
)

// Client represents a Binance spot API client
type Client struct {
	baseURL    string
	apiKey     string
	secret     string
	recvWindow int
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client. An empty baseURL selects LiveURL. Public
// endpoints work without credentials.
func NewClient(baseURL, apiKey, secret string) *Client {
	if baseURL == "" {
		baseURL = LiveURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		secret:     secret,
		recvWindow: defaultRecvWindow,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// HasCredentials reports whether signed endpoints can be used.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.secret != ""
}

// APIError is the error body returned by the exchange.
type APIError struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error (status %d, code %d): %s", e.Status, e.Code, e.Msg)
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// get calls a public endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, false, out)
}

// signed calls an endpoint that needs the API key and a request signature.
func (c *Client) signed(ctx context.Context, method, path string, params url.Values, out any) error {
	if !c.HasCredentials() {
		return fmt.Errorf("binance: %s %s requires API credentials", method, path)
	}
	return c.do(ctx, method, path, params, true, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}

	if signed {
		params.Set("recvWindow", strconv.Itoa(c.recvWindow))
		params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	query := params.Encode()
	if signed {
		query += "&signature=" + c.sign(query)
	}

	apiURL := c.baseURL + path
	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		if query != "" {
			apiURL += "?" + query
		}
	} else {
		body = strings.NewReader(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Msg == "" {
			apiErr.Msg = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks connectivity to the REST API.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v3/ping", nil, nil)
}
