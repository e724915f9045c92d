package api

import (
	"context"
)

// Login exchanges credentials for a bearer token. The token is returned to
// the caller for storage; the client itself stays stateless about auth.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/auth/login", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
