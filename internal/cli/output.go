package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samvad-hq/dblclient/internal/app"
	"github.com/samvad-hq/dblclient/internal/config"
	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/dbl"
)

// newClient builds the API client for one-shot commands; tests replace it.
var newClient = func(ctx context.Context) (*dbl.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.NewClient(ctx, cfg, nil, nil)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// await waits for p and prints its value as JSON.
func await[T any](ctx context.Context, w io.Writer, p *async.Pending[T], err error) error {
	if err != nil {
		return err
	}
	v, err := p.Wait(ctx)
	if err != nil {
		return err
	}
	return printJSON(w, v)
}
