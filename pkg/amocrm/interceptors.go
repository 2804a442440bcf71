package amocrm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// Clone returns a chain with the same interceptors that can be extended
// without affecting c. A nil chain clones to an empty one.
func (c *InterceptorChain) Clone() *InterceptorChain {
	clone := NewInterceptorChain()
	if c == nil {
		return clone
	}

	clone.requestInterceptors = append(clone.requestInterceptors, c.requestInterceptors...)
	clone.responseInterceptors = append(clone.responseInterceptors, c.responseInterceptors...)

	return clone
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs outgoing requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if id, ok := req.Headers[HeaderRequestID]; ok {
			fields["request_id"] = id
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RequestIDInterceptor tags each request with a fresh UUID unless one is set.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if _, ok := req.Headers[HeaderRequestID]; ok {
			return nil
		}

		req.SetHeader(HeaderRequestID, uuid.NewString())

		return nil
	}
}

// RateLimitInterceptor implements client-side rate limiting. The API
// rejects accounts that exceed seven requests per second.
func RateLimitInterceptor(requestsPerSecond float64) RequestInterceptor {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(ctx context.Context, req *Request) error {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		return nil
	}
}

// HeaderInterceptor sets static headers on every request.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		for key, value := range headers {
			req.SetHeader(key, value)
		}

		return nil
	}
}
