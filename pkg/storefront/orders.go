package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Checkout places an order from the remote cart. idempotencyKey lets a retried
// submission replay the first result instead of placing a second order.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest, idempotencyKey string) (CheckoutResult, error) {
	var out CheckoutResult
	err := c.do(ctx, "checkout", request{
		method:         http.MethodPost,
		path:           "/api/orders/checkout",
		body:           req,
		idempotencyKey: idempotencyKey,
	}, &out)
	return out, err
}

// OrderHistory lists orders newest first.
func (c *Client) OrderHistory(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	var out []Order
	err := c.do(ctx, "order history", request{method: http.MethodGet, path: "/api/orders/history/" + userID.String()}, &out)
	return out, err
}
