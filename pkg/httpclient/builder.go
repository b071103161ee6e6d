package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrInvalidRequest is returned when a request cannot be built from its inputs.
var ErrInvalidRequest = errors.New("invalid request")

// Builder assembles Requests against a fixed base URL. It holds no mutable
// state and is safe for concurrent use.
type Builder struct {
	base *url.URL
}

// NewBuilder parses baseURL, which must be absolute (scheme and host).
func NewBuilder(baseURL string) (*Builder, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base url is empty", ErrInvalidRequest)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrInvalidRequest, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q is not absolute", ErrInvalidRequest, baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return &Builder{base: u}, nil
}

// BaseURL returns the configured base URL.
func (b *Builder) BaseURL() string { return b.base.String() }

// Get builds a GET request for the path segments and optional query.
func (b *Builder) Get(op string, segments []string, query url.Values) (*Request, error) {
	u, err := b.endpoint(segments, query)
	if err != nil {
		return nil, err
	}
	return &Request{op: op, method: http.MethodGet, url: u}, nil
}

// PostJSON builds a POST request whose body is body serialized as JSON.
func (b *Builder) PostJSON(op string, segments []string, body any) (*Request, error) {
	u, err := b.endpoint(segments, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s body is nil", ErrInvalidRequest, op)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s body: %v", ErrInvalidRequest, op, err)
	}
	return &Request{
		op:          op,
		method:      http.MethodPost,
		url:         u,
		body:        payload,
		contentType: ContentTypeJSON,
		header:      http.Header{"Content-Type": []string{ContentTypeJSON}},
	}, nil
}

func (b *Builder) endpoint(segments []string, query url.Values) (*url.URL, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no path segments", ErrInvalidRequest)
	}
	escaped := make([]string, 0, len(segments))
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, fmt.Errorf("%w: path segment %d is empty", ErrInvalidRequest, i)
		}
		escaped = append(escaped, url.PathEscape(seg))
	}

	// Segments are escaped individually so an id containing "/" stays one segment.
	rawPath := strings.TrimRight(b.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	u := *b.base
	u.Path = path
	u.RawPath = rawPath
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}
