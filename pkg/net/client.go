package net

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// GetOAuthClient returns a client that sends token as a bearer credential
// over the shared transport.
func GetOAuthClient(ctx context.Context, token string) *http.Client {
	base := &http.Client{
		Transport: reqTransport,
		Timeout:   timeoutInSeconds * time.Second,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		TokenType:   "Bearer",
		AccessToken: token,
	})
	return oauth2.NewClient(ctx, ts)
}
