package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

// httpPublisher posts vote events as JSON to a webhook.
type httpPublisher struct {
	id     string
	method string
	url    string
	client *resty.Client
	log    sinkLogger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	hook := cfg.HTTP
	if hook == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	method := hook.Method
	if method == "" {
		method = httpDefaultMethod
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(hook.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", httpclient.ContentTypeJSON).
		SetHeaders(hook.Headers)
	if hook.Token != "" {
		client.SetAuthToken(hook.Token)
	}

	return &httpPublisher{
		id:     cfg.ID,
		method: method,
		url:    hook.URL,
		client: client,
		log:    newSinkLogger(log, cfg.ID, TypeHTTP),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish delivers evt; any non-2xx answer is returned as a *httpclient.StatusError.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Id", evt.ID).
		SetHeader("X-Event-Type", evt.Type).
		SetBody(evt).
		Execute(h.method, h.url)
	if err != nil {
		h.log.failed(evt, err)
		return fmt.Errorf("deliver to %s: %w", h.url, err)
	}
	if resp.IsError() {
		err := httpclient.NewStatusError(resp.StatusCode(), resp.Body())
		h.log.failed(evt, err)
		return err
	}
	h.log.delivered(evt, resp.Header().Get("X-Request-Id"))
	return nil
}
