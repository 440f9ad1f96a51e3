package main

import (
	"context"
	"errors"
	"os"

	"github.com/mixtape-cli/mixtape/internal/catalog"
	"github.com/mixtape-cli/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	shared.LoadEnv("")

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	opts := RunnerOpts{Config: config, Logger: logger}

	if tokens := tokenProvider(config.Credentials.Catalog); tokens != nil {
		client, err := catalog.NewClient(catalog.ClientOpts{
			Tokens:    tokens,
			RateLimit: config.Builder.RateLimit,
			Logger:    logger,
		})
		if err == nil {
			opts.Catalog = client
		} else {
			logger.Warn("catalog client unavailable", "error", err)
		}
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "mixtape",
		Usage:    "Build mood and era aware playlists from a streaming catalog",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// tokenProvider picks a credential source: a pre-issued user token when
// configured, otherwise the client-credentials grant.
func tokenProvider(creds shared.CatalogConfig) catalog.TokenProvider {
	if creds.AccessToken != "" {
		return catalog.StaticToken(creds.AccessToken)
	}
	if creds.ClientID != "" && creds.ClientSecret != "" {
		if cc, err := catalog.NewClientCredentials(creds.ClientID, creds.ClientSecret); err == nil {
			return cc
		}
	}
	return nil
}
