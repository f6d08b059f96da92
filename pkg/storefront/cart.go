package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// FetchCart returns the remote cart of userID.
func (c *Client) FetchCart(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	var lines []CartLine
	err := c.do(ctx, "fetch cart", request{method: http.MethodGet, path: "/api/cart/" + userID.String()}, &lines)
	return lines, err
}

// AddToCart adds quantity copies of a book, merging into an existing line.
func (c *Client) AddToCart(ctx context.Context, m CartMutation) ([]CartLine, error) {
	var lines []CartLine
	err := c.do(ctx, "add to cart", request{method: http.MethodPost, path: "/api/cart/add", body: m}, &lines)
	return lines, err
}

// UpdateCart sets the absolute quantity of a line; zero or less removes it.
func (c *Client) UpdateCart(ctx context.Context, m CartMutation) ([]CartLine, error) {
	var lines []CartLine
	err := c.do(ctx, "update cart", request{method: http.MethodPost, path: "/api/cart/update", body: m}, &lines)
	return lines, err
}

// ClearCart empties the remote cart.
func (c *Client) ClearCart(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	var lines []CartLine
	err := c.do(ctx, "clear cart", request{method: http.MethodDelete, path: "/api/cart/clear/" + userID.String()}, &lines)
	return lines, err
}
