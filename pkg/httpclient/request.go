package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
)

// ContentTypeJSON is the content type attached to JSON request bodies.
const ContentTypeJSON = "application/json"

// Request is an immutable, transport-ready HTTP request. Build one with a
// Builder; derive modified copies with WithHeader.
type Request struct {
	op          string
	method      string
	url         *url.URL
	body        []byte
	contentType string
	header      http.Header
}

// Operation returns the logical operation name (e.g. "get_bot").
func (r *Request) Operation() string { return r.op }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns a copy of the absolute request URL.
func (r *Request) URL() *url.URL {
	u := *r.url
	return &u
}

// Body returns a copy of the serialized payload, or nil for bodiless requests.
func (r *Request) Body() []byte {
	if r.body == nil {
		return nil
	}
	return bytes.Clone(r.body)
}

// BodyReader returns a fresh reader over the payload, or nil.
func (r *Request) BodyReader() io.Reader {
	if r.body == nil {
		return nil
	}
	return bytes.NewReader(r.body)
}

// ContentType returns the declared body content type, empty when there is no body.
func (r *Request) ContentType() string { return r.contentType }

// Header returns a copy of the request headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// WithHeader returns a copy of r with key set to value, replacing any existing values.
func (r *Request) WithHeader(key, value string) *Request {
	cp := *r
	cp.header = r.header.Clone()
	if cp.header == nil {
		cp.header = make(http.Header, 1)
	}
	cp.header.Set(key, value)
	return &cp
}
