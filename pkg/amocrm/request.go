package amocrm

import (
	"context"
	"net/http"
	"net/url"
)

// Request is a composed API call. Body is encoded as JSON by the transport.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Headers  map[string]string
	Body     any
	Metadata map[string]interface{}
}

// NewRequest creates a request with initialised maps.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   url.Values{},
		Headers: map[string]string{},
	}
}

// SetHeader sets a header, creating the map if needed.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}

	r.Headers[key] = value
}

// Response is what the transport observed for a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// Requester performs composed requests and returns the decoded JSON object.
// An empty response body decodes to an empty record.
type Requester interface {
	Perform(ctx context.Context, req *Request) (Record, error)
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(ctx context.Context, req *Request) (Record, error)

// Perform implements Requester.
func (f RequesterFunc) Perform(ctx context.Context, req *Request) (Record, error) {
	return f(ctx, req)
}
