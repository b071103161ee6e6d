package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/dblclient/internal/config"
	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

// NewClient builds a list client from config. obs may be nil.
func NewClient(ctx context.Context, cfg *config.Config, log logger.Logger, obs async.Observer) (*dbl.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = dbl.DefaultTimeout
	}
	rc := httpclient.NewRestyHTTPClient(timeout).
		SetHeader("User-Agent", userAgent(cfg.AppName))
	opts := []dbl.Option{
		dbl.WithBaseURL(cfg.BaseURL),
		dbl.WithRestyClient(rc),
	}
	if log != nil {
		opts = append(opts, dbl.WithLogger(log))
	}
	if obs != nil {
		opts = append(opts, dbl.WithObserver(obs))
	}
	if ctx != nil {
		opts = append(opts, dbl.WithBaseContext(ctx))
	}

	client, err := dbl.New(cfg.Token, cfg.BotID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create dbl client: %w", err)
	}
	return client, nil
}

func userAgent(appName string) string {
	if appName == "" {
		appName = "dblctl"
	}
	return appName + " (+https://github.com/samvad-hq/dblclient)"
}
