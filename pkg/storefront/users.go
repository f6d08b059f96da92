package storefront

import (
	"context"
	"net/http"
)

func (c *Client) Register(ctx context.Context, reg Registration) (Profile, error) {
	var profile Profile
	err := c.do(ctx, "register", request{method: http.MethodPost, path: "/api/users/register", body: reg}, &profile)
	return profile, err
}

func (c *Client) Login(ctx context.Context, creds Credentials) (Profile, error) {
	var profile Profile
	err := c.do(ctx, "login", request{method: http.MethodPost, path: "/api/users/login", body: creds}, &profile)
	return profile, err
}
