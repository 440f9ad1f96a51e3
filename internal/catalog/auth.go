package catalog

import (
	"context"
	"fmt"

	"github.com/mixtape-cli/mixtape/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenURL = "https://accounts.spotify.com/api/token"

// TokenProvider supplies a currently valid bearer credential.
//
// The client does not refresh or persist credentials itself; providers own
// that lifecycle.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider wrapping a pre-issued bearer token, e.g. a
// user-scoped token supplied via configuration.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty access token", shared.ErrMissingCredentials)
	}
	return string(s), nil
}

// ClientCredentials is a TokenProvider backed by the OAuth2
// client-credentials grant. Tokens are cached and refreshed by the
// underlying [oauth2.TokenSource].
type ClientCredentials struct {
	source oauth2.TokenSource
}

// NewClientCredentials creates a provider for the given application credentials.
func NewClientCredentials(clientID, clientSecret string) (*ClientCredentials, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	return &ClientCredentials{source: cfg.TokenSource(context.Background())}, nil
}

func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	token, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}
