package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rustyeddy/signalbot/broker"
	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	Symbol        string          `json:"symbol"`
	OrderID       json.Number     `json:"orderId"`
	ClientOrderID string          `json:"clientOrderId"`
	Status        string          `json:"status"`
	ExecutedQty   decimal.Decimal `json:"executedQty"`
}

// CreateMarketOrder submits a MARKET order for qty units of the base asset.
func (c *Client) CreateMarketOrder(ctx context.Context, symbol string, side broker.Side, qty decimal.Decimal) (OrderResponse, error) {
	if side != broker.Buy && side != broker.Sell {
		return OrderResponse{}, fmt.Errorf("invalid side %q", side)
	}
	if !qty.IsPositive() {
		return OrderResponse{}, fmt.Errorf("invalid quantity %s", qty)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", qty.String())
	params.Set("newOrderRespType", "RESULT")

	var resp OrderResponse
	if err := c.signed(ctx, "POST", "/api/v3/order", params, &resp); err != nil {
		return OrderResponse{}, fmt.Errorf("create %s order: %w", side, err)
	}
	return resp, nil
}
